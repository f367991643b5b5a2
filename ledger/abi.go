package ledger

// Call surfaces of the two deployed contracts, trimmed to the operations
// this layer consumes.

const estateABI = `[
  {"type":"function","name":"getAllPropertiesCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPropertyDetails","stateMutability":"view","inputs":[{"name":"propertyId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[
    {"name":"name","type":"string"},
    {"name":"location","type":"string"},
    {"name":"description","type":"string"},
    {"name":"imageURI","type":"string"},
    {"name":"totalCost","type":"uint256"},
    {"name":"totalNumberOfTokens","type":"uint256"},
    {"name":"pricePerToken","type":"uint256"},
    {"name":"isActive","type":"bool"},
    {"name":"isRentable","type":"bool"},
    {"name":"monthlyRent","type":"uint256"}]}]},
  {"type":"function","name":"tokenOwnership","stateMutability":"view","inputs":[{"name":"propertyId","type":"uint256"},{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getPropertyRentalInfo","stateMutability":"view","inputs":[{"name":"propertyId","type":"uint256"}],"outputs":[{"name":"isRentable","type":"bool"},{"name":"monthlyRent","type":"uint256"}]},
  {"type":"function","name":"getAllSellOrders","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"orderId","type":"uint256"},
    {"name":"propertyId","type":"uint256"},
    {"name":"seller","type":"address"},
    {"name":"tokenAmount","type":"uint256"},
    {"name":"pricePerToken","type":"uint256"},
    {"name":"isActive","type":"bool"}]}]},
  {"type":"function","name":"getMySellOrders","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"orderId","type":"uint256"},
    {"name":"propertyId","type":"uint256"},
    {"name":"seller","type":"address"},
    {"name":"tokenAmount","type":"uint256"},
    {"name":"pricePerToken","type":"uint256"},
    {"name":"isActive","type":"bool"}]}]},
  {"type":"function","name":"getTenantRentals","stateMutability":"view","inputs":[{"name":"tenant","type":"address"}],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"rentalId","type":"uint256"},
    {"name":"propertyId","type":"uint256"},
    {"name":"tenant","type":"address"},
    {"name":"startDate","type":"uint256"},
    {"name":"endDate","type":"uint256"},
    {"name":"lastRentPayment","type":"uint256"},
    {"name":"isActive","type":"bool"}]}]},
  {"type":"function","name":"purchasePropertyTokens","stateMutability":"payable","inputs":[{"name":"propertyId","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"sellPropertyTokens","stateMutability":"nonpayable","inputs":[{"name":"propertyId","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"createSellOrder","stateMutability":"nonpayable","inputs":[{"name":"propertyId","type":"uint256"},{"name":"tokenAmount","type":"uint256"},{"name":"pricePerToken","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"cancelSellOrder","stateMutability":"nonpayable","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"buyFromSellOrder","stateMutability":"payable","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"rentProperty","stateMutability":"payable","inputs":[{"name":"propertyId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"payRent","stateMutability":"payable","inputs":[{"name":"rentalId","type":"uint256"}],"outputs":[]}
]`

const voteABI = `[
  {"type":"function","name":"getPropertiesCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getAllProperties","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"propertyId","type":"uint256"},
    {"name":"name","type":"string"},
    {"name":"location","type":"string"},
    {"name":"totalTokens","type":"uint256"},
    {"name":"isActive","type":"bool"},
    {"name":"isRentable","type":"bool"},
    {"name":"monthlyRent","type":"uint256"},
    {"name":"mappedRealEstateId","type":"uint256"}]}]},
  {"type":"function","name":"getPropertyApplications","stateMutability":"view","inputs":[{"name":"propertyId","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"applicationId","type":"uint256"},
    {"name":"propertyId","type":"uint256"},
    {"name":"applicant","type":"address"},
    {"name":"name","type":"string"},
    {"name":"description","type":"string"},
    {"name":"votingEndTime","type":"uint256"},
    {"name":"isActive","type":"bool"},
    {"name":"isApproved","type":"bool"},
    {"name":"selectedRenter","type":"address"}]}]},
  {"type":"function","name":"getCandidateVotes","stateMutability":"view","inputs":[{"name":"applicationId","type":"uint256"},{"name":"candidate","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"hasTokenHolderVoted","stateMutability":"view","inputs":[{"name":"applicationId","type":"uint256"},{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"tokenOwnership","stateMutability":"view","inputs":[{"name":"propertyId","type":"uint256"},{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getTokensOwned","stateMutability":"view","inputs":[{"name":"propertyId","type":"uint256"},{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"useRealEstateContract","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"applyForRent","stateMutability":"nonpayable","inputs":[{"name":"propertyId","type":"uint256"},{"name":"name","type":"string"},{"name":"description","type":"string"}],"outputs":[]},
  {"type":"function","name":"voteForRent","stateMutability":"nonpayable","inputs":[{"name":"applicationId","type":"uint256"},{"name":"candidate","type":"address"}],"outputs":[]},
  {"type":"function","name":"finalizeApplication","stateMutability":"nonpayable","inputs":[{"name":"applicationId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"setRealEstateContract","stateMutability":"nonpayable","inputs":[{"name":"realEstate","type":"address"}],"outputs":[]}
]`

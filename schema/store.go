package schema

// bolt bucket names
var (
	BucketCatalog = []byte("catalog-snapshot")
	BucketMeta    = []byte("meta")
)

// bolt keys
var (
	KeyCatalog  = []byte("properties")
	KeyLoadedAt = []byte("loaded-at")
)

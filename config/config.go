package config

import (
	"os"

	"github.com/tidwall/gjson"
)

// Chain holds the static ledger endpoints. Loaded once at startup; the
// only mutable piece of configuration (the governance link) lives in Wdb.
type Chain struct {
	RPCURL        string
	EstateAddress string
	VoteAddress   string
	KeyPath       string
}

type Config struct {
	chain Chain
	wdb   *Wdb
}

func New(chainFilePath string, configDSN string, sqliteDir string, useSqlite bool) *Config {
	wdb := NewWdb(configDSN, sqliteDir, useSqlite)
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}
	chain, err := LoadChain(chainFilePath)
	if err != nil {
		panic(err)
	}
	return &Config{
		chain: chain,
		wdb:   wdb,
	}
}

// LoadChain reads the chain settings file, e.g.
//
//	{"rpc_url":"http://127.0.0.1:8545","estate_address":"0x..","vote_address":"0x..","key_path":"./data/operator.key"}
func LoadChain(path string) (Chain, error) {
	by, err := os.ReadFile(path)
	if err != nil {
		return Chain{}, err
	}
	return Chain{
		RPCURL:        gjson.GetBytes(by, "rpc_url").String(),
		EstateAddress: gjson.GetBytes(by, "estate_address").String(),
		VoteAddress:   gjson.GetBytes(by, "vote_address").String(),
		KeyPath:       gjson.GetBytes(by, "key_path").String(),
	}, nil
}

func (c *Config) Chain() Chain {
	return c.chain
}

func (c *Config) Linked() bool {
	st, err := c.wdb.GetLinkState()
	if err != nil {
		return false
	}
	return st.Linked
}

// RecordLink persists a successful setRealEstateContract call.
func (c *Config) RecordLink(estateAddr string) error {
	return c.wdb.SaveLinkState(estateAddr)
}

func (c *Config) Close() {
	c.wdb.Close()
}

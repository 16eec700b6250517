package core

import (
	"strings"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config lendex config
type Config struct {
	DB        db.Config      `json:"db"`
	Chain     Chain          `json:"chain"`
	Contracts Contracts      `json:"contracts"`
	Protocol  ProtocolConfig `json:"protocol"`
	CMS       CMS            `json:"cms"`
	Server    Server         `json:"server"`
}

// Chain json-rpc and ingestion config
type Chain struct {
	Endpoint      string        `json:"endpoint" valid:"url,required"`
	CallTimeout   time.Duration `json:"call_timeout"`
	MaxRetries    uint64        `json:"max_retries"`
	Confirmations uint64        `json:"confirmations"`
	StartBlock    uint64        `json:"start_block"`
	BatchSize     uint64        `json:"batch_size"`
}

// Contracts static contract addresses
type Contracts struct {
	SeniorPool     string `json:"senior_pool" valid:"required"`
	Fidu           string `json:"fidu" valid:"required"`
	StakingRewards string `json:"staking_rewards"`
	Config         string `json:"config" valid:"required"`
	Factory        string `json:"factory" valid:"required"`
	Usdc           string `json:"usdc"`
}

// ProtocolConfig indexing policy
type ProtocolConfig struct {
	V2_2MigrationTime        int64           `json:"v2_2_migration_time"`
	DefaultLeverageRatio     decimal.Decimal `json:"default_leverage_ratio"`
	DefaultLatenessGraceDays int64           `json:"default_lateness_grace_days"`
	V1StyleDeals             []string        `json:"v1_style_deals"`
}

// CMS deal metadata source
type CMS struct {
	Endpoint     string        `json:"endpoint"`
	CacheTTL     time.Duration `json:"cache_ttl"`
	WarmSchedule string        `json:"warm_schedule"`
}

// Server query server
type Server struct {
	Port int `json:"port"`
}

// DefaultV2_2MigrationTime timestamp after which credit lines may support maxLimit()
const DefaultV2_2MigrationTime int64 = 1643943600

// Defaults fill zero values
func (c *Config) Defaults() {
	if c.Chain.CallTimeout <= 0 {
		c.Chain.CallTimeout = 10 * time.Second
	}

	if c.Chain.MaxRetries == 0 {
		c.Chain.MaxRetries = 5
	}

	if c.Chain.BatchSize == 0 {
		c.Chain.BatchSize = 1000
	}

	if c.Protocol.V2_2MigrationTime == 0 {
		c.Protocol.V2_2MigrationTime = DefaultV2_2MigrationTime
	}

	if c.Protocol.DefaultLeverageRatio.IsZero() {
		c.Protocol.DefaultLeverageRatio = decimal.NewFromInt(4)
	}

	if c.Protocol.DefaultLatenessGraceDays == 0 {
		c.Protocol.DefaultLatenessGraceDays = 30
	}

	if c.CMS.CacheTTL <= 0 {
		c.CMS.CacheTTL = 5 * time.Minute
	}

	if c.CMS.WarmSchedule == "" {
		c.CMS.WarmSchedule = "@every 5m"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 7778
	}
}

// Normalize lower case every address
func (c *Contracts) Normalize() {
	c.SeniorPool = strings.ToLower(c.SeniorPool)
	c.Fidu = strings.ToLower(c.Fidu)
	c.StakingRewards = strings.ToLower(c.StakingRewards)
	c.Config = strings.ToLower(c.Config)
	c.Factory = strings.ToLower(c.Factory)
	c.Usdc = strings.ToLower(c.Usdc)
}

// IsV1StyleDeal pools configured as v1 style deals
func (p *ProtocolConfig) IsV1StyleDeal(pool string) bool {
	for _, id := range p.V1StyleDeals {
		if strings.EqualFold(id, pool) {
			return true
		}
	}

	return false
}

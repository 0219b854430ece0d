package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.QueueCapacity)
	assert.Equal(t, IdleYield, cfg.IdlePolicy)
	assert.Equal(t, PriceTreeHashMapList, cfg.PriceTreeKind)
	assert.Equal(t, ":9000", cfg.BindAddress)
	assert.True(t, cfg.SnapshotEnabled)
}

func TestValidateRejectsBadQueueCapacity(t *testing.T) {
	cfg := Config{QueueCapacity: 0, IdlePolicy: IdleSpin, PriceTreeKind: PriceTreeHashMapList, BindAddress: ":9000"}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownIdlePolicy(t *testing.T) {
	cfg := Config{QueueCapacity: 1, IdlePolicy: "spin-harder", PriceTreeKind: PriceTreeHashMapList, BindAddress: ":9000"}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownPriceTreeKind(t *testing.T) {
	cfg := Config{QueueCapacity: 1, IdlePolicy: IdleSpin, PriceTreeKind: "avl", BindAddress: ":9000"}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsEmptyBindAddress(t *testing.T) {
	cfg := Config{QueueCapacity: 1, IdlePolicy: IdleSpin, PriceTreeKind: PriceTreeHashMapList, BindAddress: ""}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	cfg := Config{
		QueueCapacity:   1024,
		IdlePolicy:      IdlePark,
		PriceTreeKind:   PriceTreeSharded,
		BindAddress:     ":9000",
		SnapshotEnabled: false,
		MetricsEnabled:  false,
	}
	assert.NoError(t, cfg.Validate())
}

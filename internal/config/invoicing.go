package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// InvoicingConfig holds tenant-wide invoicing policy. It is loaded from
// invoicing.yml and hot-reloaded on change.
type InvoicingConfig struct {
	FallbackHourlyRate float64 `mapstructure:"fallbackHourlyRate"`
	DefaultTaxRate     float64 `mapstructure:"defaultTaxRate"`
	NetDueDays         int     `mapstructure:"netDueDays"`
	NumberPrefix       string  `mapstructure:"numberPrefix"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		FallbackHourlyRate: 75,
		DefaultTaxRate:     0,
		NetDueDays:         30,
		NumberPrefix:       "INV",
	}
}

func (c InvoicingConfig) FallbackRate() decimal.Decimal {
	return decimal.NewFromFloat(c.FallbackHourlyRate)
}

func (c InvoicingConfig) TaxRate() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultTaxRate)
}

// InvoicingConfigHolder exposes the current invoicing policy.
type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/billable")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.fallbackHourlyRate", defaults.FallbackHourlyRate)
	v.SetDefault("invoicing.defaultTaxRate", defaults.DefaultTaxRate)
	v.SetDefault("invoicing.netDueDays", defaults.NetDueDays)
	v.SetDefault("invoicing.numberPrefix", defaults.NumberPrefix)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticInvoicingConfigHolder wraps a fixed config, used by tests.
func NewStaticInvoicingConfigHolder(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if cfg.FallbackHourlyRate <= 0 {
		return errors.New("invoicing.fallbackHourlyRate must be positive")
	}
	if cfg.DefaultTaxRate < 0 {
		return errors.New("invoicing.defaultTaxRate cannot be negative")
	}
	if cfg.NetDueDays <= 0 {
		return errors.New("invoicing.netDueDays must be positive")
	}
	if strings.TrimSpace(cfg.NumberPrefix) == "" {
		return errors.New("invoicing.numberPrefix cannot be empty")
	}
	return nil
}

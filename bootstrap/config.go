package bootstrap

import (
	"github.com/atelierai/platform/config"
)

// Config is the constraint on application config types. A struct that
// embeds config.ServiceConfig satisfies it through promoted methods, so a
// service only needs to add its own sections:
//
//	type APIConfig struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Server server.Config  `mapstructure:"server"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

package registry

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ModuleContext carries everything a module needs to initialize.
type ModuleContext struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
}

// Module is a self-registering feature unit (dependency wiring + routes).
type Module interface {
	Name() string

	Init(ctx *ModuleContext) error

	// Priority orders initialization; lower runs first. The user module
	// comes before order/payment, which depend on it.
	Priority() int
}

var moduleRegistry = make(map[string]Module)

func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules initializes all registered modules by priority.
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	// Few modules; a simple sort is enough.
	for i := 0; i < len(modules); i++ {
		for j := i + 1; j < len(modules); j++ {
			if modules[i].Priority() > modules[j].Priority() {
				modules[i], modules[j] = modules[j], modules[i]
			}
		}
	}

	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

package modules

import (
	"github.com/iota-uz/hrflow/modules/core"
	"github.com/iota-uz/hrflow/modules/hrm"
	"github.com/iota-uz/hrflow/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	hrm.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}

package app

import (
	"github.com/specialistvlad/nodeflow/internal/registry"
	"github.com/specialistvlad/nodeflow/modules/delay"
	"github.com/specialistvlad/nodeflow/modules/env_vars"
	"github.com/specialistvlad/nodeflow/modules/http_request"
	"github.com/specialistvlad/nodeflow/modules/print"
)

// coreModules is the definitive list of all node modules that are compiled
// into the nodeflow binary.
var coreModules = []registry.Module{
	&delay.Module{},
	&env_vars.Module{},
	&http_request.Module{},
	&print.Module{},
}

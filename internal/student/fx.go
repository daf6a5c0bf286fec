package student

import (
	"github.com/classbill/classbill/internal/student/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("student",
	fx.Provide(repository.Provide),
)

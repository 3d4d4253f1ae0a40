package providers

import (
	"fmt"
	"pvd/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct-tag rules on every config section. gookit/validate
// does not descend into nested structs, so each section is validated on its
// own and reported with its section name.
func (cv *CnfValidator) Validate() error {
	sections := map[string]interface{}{
		"webServer": &cv.conf.WebServer,
		"monitor":   &cv.conf.Monitor,
		"storage":   &cv.conf.Storage,
		"analytics": &cv.conf.Analytics,
		"logger":    &cv.conf.Logger,
	}

	for name, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			return fmt.Errorf("config section %s: %s", name, v.Errors.One())
		}
	}
	return nil
}

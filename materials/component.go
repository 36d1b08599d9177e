package materials

import (
	"fmt"
)

// ComponentKind tells apart the three levels of the cell hierarchy
type ComponentKind uint8

const (
	KindGlobal ComponentKind = iota
	KindEnvironment
	KindMaterial
)

func (k ComponentKind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindEnvironment:
		return "environment"
	case KindMaterial:
		return "material"
	default:
		return fmt.Sprintf("ComponentKind(%d)", uint8(k))
	}
}

// Config declares the environments and the materials each one groups.
// Component ids are handed out in declaration order starting at 1, each
// environment directly followed by its materials.
type Config struct {
	Environments []EnvironmentConfig
}

// EnvironmentConfig is one environment and the names of its materials
type EnvironmentConfig struct {
	Name      string
	Materials []string
}

// ComponentInfo describes a registered component
type ComponentInfo struct {
	ID          ComponentID
	Name        string
	Kind        ComponentKind
	Environment ComponentID   // Owning environment, self for environments
	Materials   []ComponentID // Environments only
}

// validate checks names are unique and non-empty and that every
// environment has at least one material
func (cfg Config) validate() error {
	if len(cfg.Environments) == 0 {
		return fmt.Errorf("no environment declared")
	}
	seen := make(map[string]bool)
	check := func(name string) error {
		if name == "" {
			return fmt.Errorf("empty component name")
		}
		if seen[name] {
			return fmt.Errorf("component %q declared twice", name)
		}
		seen[name] = true
		return nil
	}
	for _, env := range cfg.Environments {
		if err := check(env.Name); err != nil {
			return err
		}
		if len(env.Materials) == 0 {
			return fmt.Errorf("environment %q has no material", env.Name)
		}
		for _, mat := range env.Materials {
			if err := check(mat); err != nil {
				return err
			}
		}
	}
	return nil
}

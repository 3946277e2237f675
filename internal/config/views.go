package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lei/plr-summary/internal/models"
)

// ViewsConfig represents the views configuration file structure
type ViewsConfig struct {
	Views []ViewDefinition `yaml:"views"`
}

// ViewDefinition represents a saved view in the config file
type ViewDefinition struct {
	ViewID      string `yaml:"view_id"`
	DisplayName string `yaml:"display_name"`
	Namespace   string `yaml:"namespace"`
	Selector    string `yaml:"selector"`
}

// LoadViews reads and parses the views configuration file
func LoadViews(path string) ([]*models.View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read views config file: %w", err)
	}

	var cfg ViewsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse views config: %w", err)
	}

	views := make([]*models.View, 0, len(cfg.Views))
	seen := make(map[string]bool, len(cfg.Views))
	for i, vd := range cfg.Views {
		if vd.ViewID == "" {
			return nil, fmt.Errorf("view at index %d missing view_id", i)
		}
		if vd.Namespace == "" {
			return nil, fmt.Errorf("view %s missing namespace", vd.ViewID)
		}
		if seen[vd.ViewID] {
			return nil, fmt.Errorf("duplicate view_id %s", vd.ViewID)
		}
		seen[vd.ViewID] = true

		views = append(views, &models.View{
			ViewID:      vd.ViewID,
			DisplayName: vd.DisplayName,
			Namespace:   vd.Namespace,
			Selector:    vd.Selector,
		})
	}

	return views, nil
}

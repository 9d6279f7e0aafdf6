package config

import (
    "fmt"
    "os"

    "gopkg.in/yaml.v3"

    "github.com/vizlink/dashboard-engine/internal/models"
)

// DashboardDefinition is one dashboard's persisted metadata: the data
// collections of its workflows (with join declarations) and the component
// descriptors laid out on its canvas. The engine reads these records, it
// never mutates or persists them.
type DashboardDefinition struct {
    ID          string                       `yaml:"id"`
    Title       string                       `yaml:"title"`
    Collections []models.DataCollection      `yaml:"collections"`
    Components  []models.ComponentDescriptor `yaml:"components"`
}

// DashboardsFile is the on-disk shape of the dashboard definitions.
type DashboardsFile struct {
    Dashboards []DashboardDefinition `yaml:"dashboards"`
}

// LoadDashboards parses dashboard definitions from a YAML file.
func LoadDashboards(path string) (*DashboardsFile, error) {
    data, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("failed to read dashboard file %s: %w", path, err)
    }
    var file DashboardsFile
    if err := yaml.Unmarshal(data, &file); err != nil {
        return nil, fmt.Errorf("failed to parse dashboard file %s: %w", path, err)
    }
    for _, d := range file.Dashboards {
        if d.ID == "" {
            return nil, fmt.Errorf("dashboard file %s: dashboard without id", path)
        }
    }
    return &file, nil
}

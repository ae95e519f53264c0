package settings

import (
	"sort"

	"github.com/vk/xcbuddy/internal/manifest"
)

// Configurations returns the build configuration names for a project: the
// defaults followed by any extra configurations declared by the project or
// its targets, sorted.
func Configurations(p *manifest.Project) []string {
	seen := make(map[string]struct{})
	names := append([]string{}, DefaultConfigurations...)
	for _, n := range names {
		seen[n] = struct{}{}
	}

	var extra []string
	collect := func(s *manifest.Settings) {
		if s == nil {
			return
		}
		for name := range s.Configurations {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			extra = append(extra, name)
		}
	}
	collect(p.Settings)
	for _, t := range p.Targets {
		collect(t.Settings)
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// ForProject returns the project-level settings of one configuration.
func ForProject(p *manifest.Project, configuration string) (map[string]manifest.SettingValue, error) {
	return Merge(projectLayers(p, configuration)...)
}

// ForTarget returns the effective settings of a target in one configuration:
// platform defaults, then project base and configuration, then the target's
// identity, then target base and configuration.
func ForTarget(p *manifest.Project, t *manifest.Target, configuration string) (map[string]manifest.SettingValue, error) {
	layers := []Layer{{Name: "default", Values: Defaults(t.Platform, t.Product, configuration)}}
	layers = append(layers, projectLayers(p, configuration)...)

	identity := map[string]manifest.SettingValue{
		"PRODUCT_NAME":              manifest.Scalar(t.Name),
		"PRODUCT_BUNDLE_IDENTIFIER": manifest.Scalar(t.BundleID),
	}
	if t.InfoPlist != "" {
		identity["INFOPLIST_FILE"] = manifest.Scalar(t.InfoPlist)
	}
	layers = append(layers, Layer{Name: "target identity", Values: identity})
	layers = append(layers, settingsLayers("target", t.Settings, configuration)...)

	return Merge(layers...)
}

func projectLayers(p *manifest.Project, configuration string) []Layer {
	return settingsLayers("project", p.Settings, configuration)
}

func settingsLayers(scope string, s *manifest.Settings, configuration string) []Layer {
	if s == nil {
		return nil
	}
	return []Layer{
		{Name: scope + " base", Values: s.Base, Replace: s.Replace},
		{Name: scope + " " + configuration, Values: s.Configurations[configuration], Replace: s.Replace},
	}
}

package generator

import (
	"sort"

	"github.com/vk/xcbuddy/internal/manifest"
)

// phaseRank is the position of a phase kind in the native build order.
func phaseRank(p *manifest.BuildPhase) int {
	switch p.Kind {
	case manifest.PhaseScript:
		if p.Position == "pre" {
			return 0
		}
		return 6
	case manifest.PhaseHeaders:
		return 1
	case manifest.PhaseSources:
		return 2
	case manifest.PhaseFrameworks:
		return 3
	case manifest.PhaseResources:
		return 4
	case manifest.PhaseCopyFiles:
		return 5
	default:
		return 7
	}
}

// orderPhases returns the phases in native build order. Phases of equal rank
// keep their declared order. When link is true and no frameworks phase is
// declared, an empty one is added so dependencies have somewhere to link.
func orderPhases(declared []*manifest.BuildPhase, link bool) []*manifest.BuildPhase {
	phases := append([]*manifest.BuildPhase{}, declared...)
	if link {
		hasFrameworks := false
		for _, p := range phases {
			if p.Kind == manifest.PhaseFrameworks {
				hasFrameworks = true
				break
			}
		}
		if !hasFrameworks {
			phases = append(phases, &manifest.BuildPhase{Kind: manifest.PhaseFrameworks})
		}
	}
	sort.SliceStable(phases, func(i, j int) bool {
		return phaseRank(phases[i]) < phaseRank(phases[j])
	})
	return phases
}

var phaseISA = map[manifest.PhaseKind]string{
	manifest.PhaseSources:    "PBXSourcesBuildPhase",
	manifest.PhaseResources:  "PBXResourcesBuildPhase",
	manifest.PhaseHeaders:    "PBXHeadersBuildPhase",
	manifest.PhaseFrameworks: "PBXFrameworksBuildPhase",
	manifest.PhaseCopyFiles:  "PBXCopyFilesBuildPhase",
	manifest.PhaseScript:     "PBXShellScriptBuildPhase",
}

// phaseName is the display name used in object comments.
func phaseName(p *manifest.BuildPhase) string {
	switch p.Kind {
	case manifest.PhaseSources:
		return "Sources"
	case manifest.PhaseResources:
		return "Resources"
	case manifest.PhaseHeaders:
		return "Headers"
	case manifest.PhaseFrameworks:
		return "Frameworks"
	case manifest.PhaseCopyFiles:
		if p.Name != "" {
			return p.Name
		}
		return "Copy Files"
	default:
		return p.Name
	}
}

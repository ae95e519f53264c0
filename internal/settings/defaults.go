package settings

import "github.com/vk/xcbuddy/internal/manifest"

// DefaultConfigurations are the build configurations every project has.
var DefaultConfigurations = []string{"Debug", "Release"}

var (
	s = manifest.Scalar
	l = manifest.List
)

var platformDefaults = map[manifest.Platform]map[string]manifest.SettingValue{
	manifest.PlatformIOS: {
		"SDKROOT":                    s("iphoneos"),
		"IPHONEOS_DEPLOYMENT_TARGET": s("15.0"),
		"TARGETED_DEVICE_FAMILY":     s("1,2"),
		"LD_RUNPATH_SEARCH_PATHS":    l("$(inherited)", "@executable_path/Frameworks"),
	},
	manifest.PlatformMacOS: {
		"SDKROOT":                  s("macosx"),
		"MACOSX_DEPLOYMENT_TARGET": s("12.0"),
		"LD_RUNPATH_SEARCH_PATHS":  l("$(inherited)", "@executable_path/../Frameworks"),
	},
	manifest.PlatformTVOS: {
		"SDKROOT":                 s("appletvos"),
		"TVOS_DEPLOYMENT_TARGET":  s("15.0"),
		"TARGETED_DEVICE_FAMILY":  s("3"),
		"LD_RUNPATH_SEARCH_PATHS": l("$(inherited)", "@executable_path/Frameworks"),
	},
	manifest.PlatformWatchOS: {
		"SDKROOT":                   s("watchos"),
		"WATCHOS_DEPLOYMENT_TARGET": s("8.0"),
		"TARGETED_DEVICE_FAMILY":    s("4"),
		"LD_RUNPATH_SEARCH_PATHS":   l("$(inherited)", "@executable_path/Frameworks"),
	},
}

var productDefaults = map[manifest.Product]map[string]manifest.SettingValue{
	manifest.ProductApp: {
		"ASSETCATALOG_COMPILER_APPICON_NAME": s("AppIcon"),
	},
	manifest.ProductFramework: {
		"DEFINES_MODULE":              s("YES"),
		"SKIP_INSTALL":                s("YES"),
		"DYLIB_INSTALL_NAME_BASE":     s("@rpath"),
		"DYLIB_COMPATIBILITY_VERSION": s("1"),
		"DYLIB_CURRENT_VERSION":       s("1"),
	},
	manifest.ProductLibrary: {
		"SKIP_INSTALL": s("YES"),
	},
	manifest.ProductUnitTests: {
		"BUNDLE_LOADER": s("$(TEST_HOST)"),
	},
	manifest.ProductUITests: {},
}

var configurationDefaults = map[string]map[string]manifest.SettingValue{
	"Debug": {
		"DEBUG_INFORMATION_FORMAT":            s("dwarf"),
		"ONLY_ACTIVE_ARCH":                    s("YES"),
		"SWIFT_OPTIMIZATION_LEVEL":            s("-Onone"),
		"SWIFT_ACTIVE_COMPILATION_CONDITIONS": l("DEBUG"),
		"GCC_PREPROCESSOR_DEFINITIONS":        l("DEBUG=1", "$(inherited)"),
	},
	"Release": {
		"DEBUG_INFORMATION_FORMAT": s("dwarf-with-dsym"),
		"SWIFT_OPTIMIZATION_LEVEL": s("-O"),
		"SWIFT_COMPILATION_MODE":   s("wholemodule"),
		"VALIDATE_PRODUCT":         s("YES"),
	},
}

// Defaults returns the built-in settings for a platform, product and
// configuration. Unknown configurations get no configuration defaults.
func Defaults(platform manifest.Platform, product manifest.Product, configuration string) map[string]manifest.SettingValue {
	out := make(map[string]manifest.SettingValue)
	for _, src := range []map[string]manifest.SettingValue{
		platformDefaults[platform],
		productDefaults[product],
		configurationDefaults[configuration],
	} {
		for k, v := range src {
			out[k] = v
		}
	}
	return out
}

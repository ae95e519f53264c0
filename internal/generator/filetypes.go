package generator

import (
	"path/filepath"
	"strings"

	"github.com/vk/xcbuddy/internal/manifest"
)

var fileTypes = map[string]string{
	".swift":        "sourcecode.swift",
	".m":            "sourcecode.c.objc",
	".mm":           "sourcecode.cpp.objcpp",
	".c":            "sourcecode.c.c",
	".cc":           "sourcecode.cpp.cpp",
	".cpp":          "sourcecode.cpp.cpp",
	".h":            "sourcecode.c.h",
	".hpp":          "sourcecode.cpp.h",
	".metal":        "sourcecode.metal",
	".storyboard":   "file.storyboard",
	".xib":          "file.xib",
	".xcassets":     "folder.assetcatalog",
	".strings":      "text.plist.strings",
	".plist":        "text.plist.xml",
	".json":         "text.json",
	".png":          "image.png",
	".jpg":          "image.jpeg",
	".jpeg":         "image.jpeg",
	".md":           "net.daringfireball.markdown",
	".framework":    "wrapper.framework",
	".xcframework":  "wrapper.xcframework",
	".bundle":       "wrapper.plug-in",
	".a":            "archive.ar",
	".dylib":        "compiled.mach-o.dylib",
	".xcdatamodeld": "wrapper.xcdatamodeld",
	".xcodeproj":    "wrapper.pb-project",
}

func fileType(path string) string {
	if t, ok := fileTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "file"
}

// productInfo describes how a product type appears in the project file.
type productInfo struct {
	productType string
	fileType    string
}

var products = map[manifest.Product]productInfo{
	manifest.ProductApp:       {"com.apple.product-type.application", "wrapper.application"},
	manifest.ProductFramework: {"com.apple.product-type.framework", "wrapper.framework"},
	manifest.ProductLibrary:   {"com.apple.product-type.library.static", "archive.ar"},
	manifest.ProductUnitTests: {"com.apple.product-type.bundle.unit-test", "wrapper.cfbundle"},
	manifest.ProductUITests:   {"com.apple.product-type.bundle.ui-testing", "wrapper.cfbundle"},
}

// productFileName is the name of the built product of a target.
func productFileName(t *manifest.Target) string {
	switch t.Product {
	case manifest.ProductApp:
		return t.Name + ".app"
	case manifest.ProductFramework:
		return t.Name + ".framework"
	case manifest.ProductLibrary:
		return "lib" + t.Name + ".a"
	default:
		return t.Name + ".xctest"
	}
}

// copyDestinations maps copy_files destinations to dstSubfolderSpec values.
var copyDestinations = map[string]string{
	"wrapper":        "1",
	"executables":    "6",
	"resources":      "7",
	"frameworks":     "10",
	"shared_support": "12",
	"plugins":        "13",
	"products":       "16",
}

package inference

import (
	"os"
	"runtime"
)

// SharedLibPathEnv overrides the platform default ONNX Runtime library path.
const SharedLibPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// GetSharedLibPath returns the path to the shared library for the current platform.
//
// Returns:
//   - string: The path to the shared library, or "" when the platform has
//     no default and SharedLibPathEnv is unset.
func GetSharedLibPath() string {
	if p := os.Getenv(SharedLibPathEnv); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	default:
		return ""
	}
}

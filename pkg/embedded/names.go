package embedded

import "path/filepath"

// Name is a file name split into its embedding components.
//
// For "App.vue.ts" the parts are HostFileName "App.vue", Extension ".ts" and
// EmbeddedExtension ".vue". For a plain "main.ts" they are "main", ".ts" and "".
type Name struct {
	HostFileName      string
	Extension         string
	EmbeddedExtension string
}

// NameFor returns the virtual file name for a host document resolved to
// nativeExt.
func NameFor(hostFileName, nativeExt string) string {
	return hostFileName + nativeExt
}

// Split breaks name into its host file name, last extension and the
// extension before it.
func Split(name string) Name {
	ext := filepath.Ext(name)
	hostName := name[:len(name)-len(ext)]
	return Name{
		HostFileName:      hostName,
		Extension:         ext,
		EmbeddedExtension: filepath.Ext(hostName),
	}
}

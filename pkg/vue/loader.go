package vue

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/spf13/afero"
)

// errModuleNotFound is returned when a CommonJS specifier cannot be resolved.
var errModuleNotFound = errors.New("module not found")

// moduleLoader evaluates CommonJS modules from a file system inside one
// goja runtime. Modules are evaluated once and cached by resolved path.
type moduleLoader struct {
	vm      *goja.Runtime
	fs      afero.Fs
	modules map[string]*goja.Object
}

func newModuleLoader(vm *goja.Runtime, fsys afero.Fs) *moduleLoader {
	return &moduleLoader{
		vm:      vm,
		fs:      fsys,
		modules: make(map[string]*goja.Object),
	}
}

// require loads specifier relative to the directory dir.
func (l *moduleLoader) require(dir, specifier string) (*goja.Object, error) {
	resolved, err := l.resolve(dir, specifier)
	if err != nil {
		return nil, err
	}
	return l.load(resolved)
}

func (l *moduleLoader) load(file string) (*goja.Object, error) {
	if exports, ok := l.modules[file]; ok {
		return exports, nil
	}

	data, err := afero.ReadFile(l.fs, file)
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", file, err)
	}

	if strings.HasSuffix(file, ".json") {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		exports := l.vm.ToValue(value).ToObject(l.vm)
		l.modules[file] = exports
		return exports, nil
	}

	// Same wrapper shape as a CommonJS module compiled by a Node loader.
	code := "(function (module, exports, require, __filename, __dirname) {" + string(data) + "\n})"
	prg, err := goja.Compile(file, code, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", file, err)
	}

	value, err := l.vm.RunProgram(prg)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", file, err)
	}
	call, ok := goja.AssertFunction(value)
	if !ok {
		return nil, fmt.Errorf("module %s is not wrapped in a function", file)
	}

	module := l.vm.NewObject()
	exports := l.vm.NewObject()
	_ = module.Set("exports", exports)
	// Cycles see the partially populated exports object.
	l.modules[file] = exports

	dir := filepath.Dir(file)
	requireFn := func(fc goja.FunctionCall) goja.Value {
		spec := fc.Argument(0).String()
		dep, err := l.require(dir, spec)
		if err != nil {
			panic(l.vm.NewGoError(err))
		}
		return dep
	}

	if _, err := call(exports, module, exports, l.vm.ToValue(requireFn), l.vm.ToValue(file), l.vm.ToValue(dir)); err != nil {
		delete(l.modules, file)
		return nil, fmt.Errorf("evaluate %s: %w", file, err)
	}

	exportsValue := module.Get("exports")
	if exportsValue == nil || goja.IsNull(exportsValue) || goja.IsUndefined(exportsValue) {
		delete(l.modules, file)
		return nil, fmt.Errorf("module %s: exports must not be null", file)
	}
	result := exportsValue.ToObject(l.vm)
	l.modules[file] = result

	return result, nil
}

// resolve maps a specifier to a file following Node's lookup rules for
// relative paths and node_modules packages. Node built-in modules are not
// available.
func (l *moduleLoader) resolve(dir, specifier string) (string, error) {
	switch {
	case specifier == "":
		return "", errors.New("require() called with an empty specifier")
	case filepath.IsAbs(specifier):
		return l.resolvePath(specifier)
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
		return l.resolvePath(filepath.Join(dir, specifier))
	}

	for current := dir; ; current = filepath.Dir(current) {
		if filepath.Base(current) != "node_modules" {
			if file, err := l.resolvePath(filepath.Join(current, "node_modules", specifier)); err == nil {
				return file, nil
			}
		}
		if current == filepath.Dir(current) {
			break
		}
	}

	return "", fmt.Errorf("%w: %q from %s", errModuleNotFound, specifier, dir)
}

func (l *moduleLoader) resolvePath(target string) (string, error) {
	for _, candidate := range []string{target, target + ".js", target + ".cjs", target + ".json"} {
		if l.isFile(candidate) {
			return candidate, nil
		}
	}

	if main := l.packageMain(target); main != "" && filepath.Join(target, main) != target {
		if file, err := l.resolvePath(filepath.Join(target, main)); err == nil {
			return file, nil
		}
	}

	for _, index := range []string{"index.js", "index.cjs", "index.json"} {
		candidate := filepath.Join(target, index)
		if l.isFile(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", errModuleNotFound, target)
}

// packageMain returns the "main" entry of dir/package.json, if any.
func (l *moduleLoader) packageMain(dir string) string {
	data, err := afero.ReadFile(l.fs, filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}

	var pkg struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return strings.TrimSuffix(pkg.Main, "/")
}

func (l *moduleLoader) isFile(name string) bool {
	info, err := l.fs.Stat(name)
	return err == nil && !info.IsDir()
}

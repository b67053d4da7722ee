package engine

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Platform identifies the operating system and architecture.
type Platform struct {
	OS   string
	Arch string
}

//nolint:gochecknoglobals
var (
	staticOnce sync.Once
	static     map[string]any
)

// staticBuiltins returns the helpers available to every expression. A
// variable of the same name declared on the host shadows the helper.
func staticBuiltins() map[string]any {
	staticOnce.Do(func() {
		static = map[string]any{
			"platform": hostPlatform(),
			"hostname": hostname(),
			"cwd":      cwd,
			"file": map[string]any{
				"exists":    fileExists,
				"isDir":     fileIsDir,
				"isRegular": fileIsRegular,
				"read":      fileRead,
			},
			"path": map[string]any{
				"abs":  pathAbs,
				"base": filepath.Base,
				"cat":  pathCat,
				"dir":  filepath.Dir,
				"ext":  filepath.Ext,
				"rel":  pathRel,
			},
			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},
		}
	})

	return static
}

// makeBuiltins returns the helper environment. environ is a list of
// KEY=VALUE pairs backing env(); nil uses the process environment.
func makeBuiltins(environ []string) map[string]any {
	m := maps.Clone(staticBuiltins())
	m["env"] = envFunc(environMap(environ))

	return m
}

// Builtins returns the names of the built-in helpers.
func Builtins() []string {
	names := append(slices.Collect(maps.Keys(staticBuiltins())), "env")
	slices.Sort(names)

	return names
}

func hostPlatform() Platform {
	p := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}

	if s, ok := os.LookupEnv("GOOS"); ok {
		p.OS = s
	}

	if s, ok := os.LookupEnv("GOARCH"); ok {
		p.Arch = s
	}

	return p
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}

	return h
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return dir
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func fileRead(path string) (string, error) {
	b, err := os.ReadFile(path)

	return string(b), err
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(key string, predicate func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

func environMap(environ []string) map[string]string {
	if environ == nil {
		environ = os.Environ()
	}

	m := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}

	return m
}

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

package configutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// ImportKey lists other config files to merge underneath the current one.
var ImportKey = "imports"

// ResolveAndMergeFile reads filePath into v, then resolves its imports
// depth-first and merges them so that the importing file wins on conflicts.
func ResolveAndMergeFile(v *viper.Viper, filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	if ext == "" {
		return errors.New("configuration file has no extension")
	}
	if !slices.Contains(viper.SupportedExts, ext) {
		return fmt.Errorf("unsupported configuration file extension: .%s", ext)
	}

	v.SetConfigType(ext)
	v.SetConfigFile(filePath)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	if err := resolveAllImports(v); err != nil {
		return fmt.Errorf("could not resolve configuration imports: %w", err)
	}

	return nil
}

// collectImports walks the import graph of v. Paths are marked visited on the
// way down to break cycles and appended on the way up so that leaves merge first.
func collectImports(v *viper.Viper, ordered *[]string, visited map[string]struct{}) error {
	for _, imp := range v.GetStringSlice(ImportKey) {
		if imp == "" {
			continue
		}

		path := filepath.Clean(imp)
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(v.ConfigFileUsed()), imp)
		}

		if _, err := os.Stat(path); err != nil {
			return err
		}
		if _, seen := visited[path]; seen {
			continue
		}
		visited[path] = struct{}{}

		child := viper.New()
		child.SetConfigFile(path)
		if err := child.ReadInConfig(); err != nil {
			return err
		}
		if err := collectImports(child, ordered, visited); err != nil {
			return err
		}

		*ordered = append(*ordered, path)
	}

	return nil
}

func resolveAllImports(v *viper.Viper) error {
	ordered := []string{}
	if err := collectImports(v, &ordered, map[string]struct{}{}); err != nil {
		return err
	}

	for _, path := range append(ordered, v.ConfigFileUsed()) {
		if err := mergeConfigFile(v, path); err != nil {
			return fmt.Errorf("merging config %s: %w", path, err)
		}
	}

	return nil
}

func mergeConfigFile(v *viper.Viper, filePath string) error {
	r, err := os.Open(filePath)
	if err != nil {
		return err
	}

	defer func() { _ = r.Close() }()
	return v.MergeConfig(r)
}

// BindEnvsRecursive binds every mapstructure-tagged field of the struct
// pointed to by iface, so that Unmarshal picks up env overrides for keys the
// config file never mentions.
func BindEnvsRecursive(v *viper.Viper, iface interface{}, path string) error {
	val := reflect.ValueOf(iface).Elem()
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		tag := strings.Split(typ.Field(i).Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}

		fullPath := tag
		if path != "" {
			fullPath = path + "." + tag
		}

		field := val.Field(i)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() && field.Type().Elem().Kind() == reflect.Struct {
				field.Set(reflect.New(field.Type().Elem()))
			}
			field = field.Elem()
		}

		if field.Kind() == reflect.Struct {
			if err := BindEnvsRecursive(v, field.Addr().Interface(), fullPath); err != nil {
				return err
			}
			continue
		}

		if err := v.BindEnv(fullPath); err != nil {
			return fmt.Errorf("failed to bind environment variable for %s: %w", fullPath, err)
		}
	}

	return nil
}

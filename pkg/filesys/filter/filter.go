// Package filter provides [filesys.Filter] implementations for
// [filesys.File.ListFiles].
package filter

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// Extension accepts regular files whose extension is ext. A leading dot in
// ext is ignored.
func Extension(ext string) filesys.Filter {
	ext = strings.TrimPrefix(ext, ".")

	return filesys.FilterFunc(func(f filesys.File) bool {
		return f.IsFile() && f.Extension() == ext
	})
}

// Dir accepts directories.
func Dir() filesys.Filter {
	return filesys.FilterFunc(filesys.File.IsDir)
}

// Regular accepts regular files.
func Regular() filesys.Filter {
	return filesys.FilterFunc(filesys.File.IsFile)
}

// Regex accepts entries whose name matches re.
func Regex(re *regexp.Regexp) filesys.Filter {
	return RegexExt(re, "")
}

// RegexExt accepts entries with extension ext whose name, without ".ext",
// matches re. An empty ext matches re against the full name.
func RegexExt(re *regexp.Regexp, ext string) filesys.Filter {
	ext = strings.TrimPrefix(ext, ".")

	return filesys.FilterFunc(func(f filesys.File) bool {
		if ext == "" {
			return re.MatchString(f.Name())
		}

		if f.Extension() != ext {
			return false
		}

		return re.MatchString(f.NameWithoutSuffix("." + ext))
	})
}

// Glob accepts entries whose name matches pattern. '*' and '?' never match
// the path separator.
func Glob(pattern string) (filesys.Filter, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}

	return filesys.FilterFunc(func(f filesys.File) bool {
		return g.Match(f.Name())
	}), nil
}

// Any accepts an entry when one of filters does. With no filters it
// accepts nothing.
func Any(filters ...filesys.Filter) filesys.Filter {
	return filesys.FilterFunc(func(f filesys.File) bool {
		for _, filter := range filters {
			if filter.Accept(f) {
				return true
			}
		}

		return false
	})
}

// All accepts an entry when every filter does. With no filters it accepts
// nothing.
func All(filters ...filesys.Filter) filesys.Filter {
	return filesys.FilterFunc(func(f filesys.File) bool {
		if len(filters) == 0 {
			return false
		}

		for _, filter := range filters {
			if !filter.Accept(f) {
				return false
			}
		}

		return true
	})
}

// Not inverts filter.
func Not(filter filesys.Filter) filesys.Filter {
	return filesys.FilterFunc(func(f filesys.File) bool {
		return !filter.Accept(f)
	})
}

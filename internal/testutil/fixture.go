// Package testutil builds the directory fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/filesys/pkg/fs"
)

// TextA is the content of a.txt in [Fixture].
const TextA = "PHP is a popular general-purpose scripting language that is especially suited to web development.\n" +
	"\n" +
	"Fast, flexible and pragmatic, PHP powers everything from your blog to the most popular websites in the world."

// Digests of [TextA].
const (
	TextASHA1 = "ae1ee9b3697975a181ac41fb3d2b1703e33df179"
	TextAMD5  = "12d29e0edc6c68f84667e1bb51bd8225"
)

// Fixture file and directory names.
var (
	FixtureFiles = []string{"a.txt", "b.txt", "c.sql", "dangohiyoko.png", "neko.jpg", "piyopiyo.gif"}
	FixtureDirs  = []string{"x", "y", "z"}
)

// Fixture creates the listing fixture under root on fsys and returns root:
//
//	a.txt b.txt c.sql dangohiyoko.png neko.jpg piyopiyo.gif
//	x/ (p/, x-1.txt)  y/ (q/)  z/
func Fixture(tb testing.TB, fsys fs.FS, root string) string {
	tb.Helper()

	dirs := []string{"x/p", "y/q", "z"}
	for _, d := range dirs {
		if err := fsys.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			tb.Fatalf("fixture MkdirAll(%q): %v", d, err)
		}
	}

	files := map[string][]byte{
		"a.txt":           []byte(TextA),
		"b.txt":           nil,
		"c.sql":           []byte("SELECT 1;\n"),
		"dangohiyoko.png": encodeImage(tb, "png"),
		"neko.jpg":        encodeImage(tb, "jpeg"),
		"piyopiyo.gif":    encodeImage(tb, "gif"),
		"x/x-1.txt":       []byte("x-1"),
	}

	for name, data := range files {
		if err := fsys.WriteFile(filepath.Join(root, name), data, 0o644); err != nil {
			tb.Fatalf("fixture WriteFile(%q): %v", name, err)
		}
	}

	return root
}

// RealFixture builds [Fixture] in a fresh temp dir on the real filesystem.
func RealFixture(tb testing.TB) string {
	tb.Helper()

	return Fixture(tb, fs.NewReal(), filepath.Join(tb.TempDir(), "files"))
}

// WriteFile writes data to path on the real filesystem.
func WriteFile(tb testing.TB, path, data string) {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("MkdirAll(%q): %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		tb.Fatalf("WriteFile(%q): %v", path, err)
	}
}

func encodeImage(tb testing.TB, format string) []byte {
	tb.Helper()

	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.White, color.Black})
	img.SetColorIndex(1, 1, 1)

	var buf bytes.Buffer

	var err error

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		tb.Fatalf("unknown image format %q", format)
	}

	if err != nil {
		tb.Fatalf("encode %s: %v", format, err)
	}

	return buf.Bytes()
}

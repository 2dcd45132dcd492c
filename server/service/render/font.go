package render

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	// coreFont is the built-in font used when no CJK font can be loaded.
	coreFont = "Helvetica"
	cjkFont  = "CJK"
)

// systemFontPaths are well-known CJK TrueType files tried after the configured ones.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/google-droid/DroidSansFallback.ttf",
	"/usr/share/fonts/truetype/arphic-gkai00mp/gkai00mp.ttf",
	"/usr/share/fonts/truetype/arphic-bsmi00lp/bsmi00lp.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\simhei.ttf`,
	`C:\Windows\Fonts\simkai.ttf`,
}

// fontFace is a TrueType font loaded into memory.
type fontFace struct {
	path string
	data []byte
}

// resolveFont returns the first loadable font among configured, then among
// fallbacks. A nil face means the core font must be used.
func resolveFont(configured, fallbacks []string) *fontFace {
	for _, path := range configured {
		face, err := loadFont(path)
		if err != nil {
			slog.Warn("Configured font unavailable", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		slog.Info("Using configured font", slog.String("path", path))
		return face
	}
	for _, path := range fallbacks {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		face, err := loadFont(path)
		if err != nil {
			slog.Debug("System font unusable", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		slog.Info("Using system font", slog.String("path", path))
		return face
	}
	slog.Warn("No CJK font found, using Helvetica; characters outside Latin-1 are drawn as placeholder squares")
	return nil
}

func loadFont(path string) (*fontFace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read font")
	}
	if err := probeFont(data); err != nil {
		return nil, errors.Wrapf(err, "failed to parse font %s", path)
	}
	return &fontFace{path: path, data: data}, nil
}

// probeFont registers data on a scratch document. The font parser panics on
// some malformed files, so panics are reported as errors.
func probeFont(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed font: %v", r)
		}
	}()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddUTF8FontFromBytes(cjkFont, "", data)
	return pdf.Error()
}

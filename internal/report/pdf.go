package report

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// PDF Export — HTML → PDF via wkhtmltopdf / chromium headless
// ════════════════════════════════════════════════════════════════════

// PDFEngine selects the HTML→PDF conversion backend.
type PDFEngine string

const (
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // no engine, fall back to HTML
)

// chromiumCandidates are the binary names probed for a chromium engine,
// in preference order.
var chromiumCandidates = []string{
	"chromium-browser",
	"chromium",
	"google-chrome",
	"google-chrome-stable",
}

// PDFConfig holds page layout settings for PDF export.
type PDFConfig struct {
	Engine       PDFEngine // empty or EngineNone means auto-detect
	PageSize     string    // default "A4"
	Orientation  string    // "portrait" (default) or "landscape"
	MarginTop    string    // default "15mm"
	MarginBottom string    // default "15mm"
	MarginLeft   string    // default "10mm"
	MarginRight  string    // default "10mm"
	OutputPath   string    // required, target .pdf path
}

// DefaultPDFConfig returns A4 portrait with moderate margins.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		PageSize:     "A4",
		Orientation:  "portrait",
		MarginTop:    "15mm",
		MarginBottom: "15mm",
		MarginLeft:   "10mm",
		MarginRight:  "10mm",
	}
}

// DetectPDFEngine probes PATH for an available conversion engine.
func DetectPDFEngine() PDFEngine {
	if _, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	if chromiumBinary() != "" {
		return EngineChromium
	}
	return EngineNone
}

// IsPDFSupported reports whether a PDF engine is available.
func IsPDFSupported() bool {
	return DetectPDFEngine() != EngineNone
}

// GeneratePDF converts a rendered HTML report to a PDF file at
// cfg.OutputPath. Without any engine on PATH it writes the HTML next to
// the requested path (extension swapped to .html) instead of failing.
func GeneratePDF(html string, cfg PDFConfig) error {
	if cfg.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}

	engine := cfg.Engine
	if engine == "" || engine == EngineNone {
		engine = DetectPDFEngine()
	}

	switch engine {
	case EngineWKHTML:
		return renderWithWKHTML(html, cfg)
	case EngineChromium:
		return renderWithChromium(html, cfg)
	case EngineNone:
		return writeHTMLFallback(html, cfg.OutputPath)
	default:
		return fmt.Errorf("unsupported PDF engine: %s", engine)
	}
}

func renderWithWKHTML(html string, cfg PDFConfig) error {
	src, cleanup, err := writeTempHTML(html)
	if err != nil {
		return err
	}
	defer cleanup()

	return runConverter("wkhtmltopdf",
		"--page-size", cfg.PageSize,
		"--orientation", cfg.Orientation,
		"--margin-top", cfg.MarginTop,
		"--margin-bottom", cfg.MarginBottom,
		"--margin-left", cfg.MarginLeft,
		"--margin-right", cfg.MarginRight,
		"--encoding", "UTF-8",
		"--enable-local-file-access",
		"--quiet",
		src,
		cfg.OutputPath,
	)
}

func renderWithChromium(html string, cfg PDFConfig) error {
	bin := chromiumBinary()
	if bin == "" {
		return fmt.Errorf("chromium not found in PATH")
	}

	absOutput, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	src, cleanup, err := writeTempHTML(html)
	if err != nil {
		return err
	}
	defer cleanup()

	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + absOutput,
		"--print-to-pdf-no-header",
	}
	if strings.EqualFold(cfg.Orientation, "landscape") {
		args = append(args, "--landscape")
	}
	args = append(args, "file://"+src)

	return runConverter(bin, args...)
}

func runConverter(bin string, args ...string) error {
	if out, err := exec.Command(bin, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\noutput: %s", filepath.Base(bin), err, out)
	}
	return nil
}

func chromiumBinary() string {
	for _, name := range chromiumCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// writeTempHTML stages the report for a converter that only reads
// files. The caller removes the file via cleanup once the converter
// exits.
func writeTempHTML(html string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "propfolio-report-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp HTML: %w", err)
	}
	name := f.Name()
	cleanup = func() { os.Remove(name) }

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp HTML: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp HTML: %w", err)
	}
	return name, cleanup, nil
}

func writeHTMLFallback(html, outputPath string) error {
	if strings.EqualFold(filepath.Ext(outputPath), ".pdf") {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".html"
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing HTML fallback: %w", err)
	}
	return nil
}

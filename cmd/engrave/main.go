package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cbegin/mmlengrave-go"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

const defaultMML = "o5 l8 c d e f+ g4 a16 b16 > c4 & c4 < | b4. a8 g2"

func main() {
	var (
		mmlPath   = flag.String("file", "", "path to an MML file")
		mmlInline = flag.String("mml", "", "inline MML string")
		pngPath   = flag.String("png", "", "write a PNG preview to this path")
		pdfPath   = flag.String("pdf", "", "write a vector PDF to this path")
		jsonPath  = flag.String("json", "", "write layout geometry as JSON to this path (- for stdout)")
		scale     = flag.Float64("scale", 2, "PNG pixels per layout unit")
		meter     = flag.String("meter", "", "override the time signature, e.g. 3/4")
		lines     = flag.Int("lines", 5, "staff line count")
		verbose   = flag.Bool("v", false, "log skipped events and layout decisions to stderr")
	)
	flag.Parse()

	mmlText, err := resolveMMLInput(*mmlPath, *mmlInline)
	if err != nil {
		log.Fatal(err)
	}

	cfg := engrave.DefaultConfig()
	cfg.StaffLineCount = *lines
	opts := []engrave.Option{engrave.WithConfig(cfg)}
	if *meter != "" {
		ts, err := score.ParseMeter(*meter)
		if err != nil {
			log.Fatal(err)
		}
		imp := score.DefaultImportOptions()
		imp.TimeSig = ts
		opts = append(opts, engrave.WithImportOptions(imp))
	}
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	opts = append(opts, engrave.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))))

	eng := engrave.NewEngraver(opts...)
	l, err := eng.LayoutMML(mmlText)
	if err != nil {
		log.Fatal(err)
	}

	if *pngPath != "" {
		if err := writeFile(*pngPath, func(f *os.File) error { return engrave.EncodePNG(f, l, *scale) }); err != nil {
			log.Fatal(err)
		}
	}
	if *pdfPath != "" {
		if err := engrave.WritePDF(*pdfPath, l); err != nil {
			log.Fatal(err)
		}
	}
	switch *jsonPath {
	case "":
	case "-":
		if err := engrave.EncodeJSON(os.Stdout, l); err != nil {
			log.Fatal(err)
		}
	default:
		if err := writeFile(*jsonPath, func(f *os.File) error { return engrave.EncodeJSON(f, l) }); err != nil {
			log.Fatal(err)
		}
	}
	if *jsonPath != "-" {
		fmt.Printf("%d staves, %d measures, %d events, %d beams (%.0fx%.0f)\n",
			len(l.Staves), len(l.Measures), len(l.Events), len(l.Beams), l.Width, l.Height)
	}
}

func resolveMMLInput(path string, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return defaultMML, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

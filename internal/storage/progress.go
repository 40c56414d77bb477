package storage

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// progressWriterAt counts bytes written by the concurrent s3 downloader.
type progressWriterAt struct {
	w   io.WriterAt
	bar *progressbar.ProgressBar
}

func newProgressWriterAt(w io.WriterAt, size int64, description string, out io.Writer) *progressWriterAt {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	return &progressWriterAt{w: w, bar: bar}
}

func (p *progressWriterAt) WriteAt(b []byte, off int64) (int, error) {
	n, err := p.w.WriteAt(b, off)
	_ = p.bar.Add(n)
	return n, err
}

func (p *progressWriterAt) finish() {
	_ = p.bar.Finish()
}

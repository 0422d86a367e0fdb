package main

import (
	"os"
	"sync"

	"github.com/Shayhha/FileShredder/shred"
	"github.com/cheggaaa/pb"
)

// bar draws the progress of one file on the terminal. For a wipe the bar
// spans every pass.
type bar struct {
	once sync.Once
	pb   *pb.ProgressBar
}

// progressBar returns nil when stderr is not a terminal.
func (c *cli) progressBar(f *shred.File) *bar {
	out, ok := c.stderr.(*os.File)
	if !ok || !c.isTerminal(int(out.Fd())) {
		return nil
	}

	p := pb.New64(f.Size)
	p.Output = out
	p.SetUnits(pb.U_BYTES)
	p.ShowSpeed = true
	p.Prefix(f.FullName + " ")
	return &bar{pb: p}
}

func (b *bar) Progress(p shred.Progress) {
	b.once.Do(func() {
		b.pb.Total = p.Total * int64(p.Passes)
		b.pb.Start()
	})
	b.pb.Set64(int64(p.Pass-1)*p.Total + p.Done)
}

func (b *bar) Notify(r shred.Result) {
	b.once.Do(func() {
		b.pb.Start()
	})
	b.pb.Finish()
}

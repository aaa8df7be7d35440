package astrora

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// datFiles are the suffixes of the files written by WriteDat.
var datFiles = []string{"c3", "tof", "vinf", "dates"}

// WriteDat writes the porkchop in dir as contour-<prefix>-{c3,tof,vinf,dates}.dat.
// Grid files have one comma separated line per launch date and one column per arrival date,
// preceded by %-comments. The dates file lists the Julian dates of both windows.
func (p *Porkchop) WriteDat(dir, prefix string) error {
	header := fmt.Sprintf("%% %s -> %s\n%% departure dates as new lines, arrival dates as new columns\n", p.Departure.Name, p.Arrival.Name)
	grids := [][][]float64{p.C3, p.TOF, p.VInfArrival}
	for i, name := range datFiles {
		fname := filepath.Join(dir, fmt.Sprintf("contour-%s-%s.dat", prefix, name))
		f, err := os.Create(fname)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(header); err != nil {
			f.Close()
			return err
		}
		w := csv.NewWriter(f)
		if i < len(grids) {
			err = writeGrid(w, grids[i])
		} else {
			err = p.writeDates(w)
		}
		w.Flush()
		if err == nil {
			err = w.Error()
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", fname, err)
		}
	}
	return nil
}

func writeGrid(w *csv.Writer, grid [][]float64) error {
	for _, row := range grid {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// writeDates writes one line per window: name, first JD, last JD and number of dates.
func (p *Porkchop) writeDates(w *csv.Writer) error {
	for _, win := range []struct {
		name  string
		dates []time.Time
	}{
		{"departure", p.Launches},
		{"arrival", p.Arrivals},
	} {
		first, last := "NaN", "NaN"
		if n := len(win.dates); n > 0 {
			first = strconv.FormatFloat(julian.TimeToJD(win.dates[0]), 'f', 6, 64)
			last = strconv.FormatFloat(julian.TimeToJD(win.dates[n-1]), 'f', 6, 64)
		}
		if err := w.Write([]string{win.name, first, last, strconv.Itoa(len(win.dates))}); err != nil {
			return err
		}
	}
	return nil
}

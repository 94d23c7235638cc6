package calculator

import (
	"bufio"
	"fmt"
	"io"
)

// ExportText writes a readable dump: a few '#' header lines, then for every
// timestep one line per grid point (z outer, y inner) holding vx vy vz, with a
// blank line between timesteps.
func (w *WindField) ExportText(dst io.Writer) error {
	if !w.Valid() {
		return ErrNotCalculated
	}
	bw := bufio.NewWriter(dst)
	g := w.grid
	fmt.Fprintf(bw, "# %s\n", w.meta.Description)
	fmt.Fprintf(bw, "# Nz %d Ny %d Nt %d dz %.6f dy %.6f dt %.6f\n", g.Nz, g.Ny, w.axis.Nt, g.Dz, g.Dy, w.axis.Dt)
	fmt.Fprintf(bw, "# hub height %.4f m, hub speed %.4f m/s, bottom %.4f m\n",
		w.meta.HubHeight, w.meta.MeanWindSpeed, g.Bottom)
	fmt.Fprintf(bw, "# vx vy vz [m/s]\n")

	for n := 0; n < w.axis.Nt; n++ {
		if n > 0 {
			bw.WriteByte('\n')
		}
		for z := 0; z < g.Nz; z++ {
			for y := 0; y < g.Ny; y++ {
				v := w.Velocity(z, y, n)
				fmt.Fprintf(bw, "%.4f %.4f %.4f\n", v.axis(AxisX), v.axis(AxisY), v.axis(AxisZ))
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export text: %w", err)
	}
	return nil
}

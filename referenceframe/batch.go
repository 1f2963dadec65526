package referenceframe

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/spatialmath"
	"go.viam.com/kinematics/utils"
)

// ForwardKinematicsBatch evaluates the chain once per row of qs and returns the poses in row order.
func (c *Chain) ForwardKinematicsBatch(qs mat.Matrix, base, tool *spatialmath.Pose) []spatialmath.Pose {
	rows, cols := qs.Dims()
	out := make([]spatialmath.Pose, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, qs)
		out[i] = c.ForwardKinematics(row, base, tool)
	}
	return out
}

// ForwardKinematicsBatchParallel is ForwardKinematicsBatch split into contiguous blocks of rows
// evaluated on up to workers goroutines. Results are identical and in the same order. The context is
// checked between samples; on cancellation the partial result is discarded and ctx.Err() returned.
func (c *Chain) ForwardKinematicsBatchParallel(
	ctx context.Context,
	qs mat.Matrix,
	base, tool *spatialmath.Pose,
	workers int,
) ([]spatialmath.Pose, error) {
	rows, cols := qs.Dims()
	out := make([]spatialmath.Pose, rows)
	if rows == 0 {
		return out, ctx.Err()
	}
	workers = utils.MinInt(utils.MaxInt(workers, 1), rows)
	blockSize := (rows + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < rows; start += blockSize {
		start := start
		end := utils.MinInt(start+blockSize, rows)
		g.Go(func() error {
			row := make([]float64, cols)
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				mat.Row(row, i, qs)
				out[i] = c.ForwardKinematics(row, base, tool)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

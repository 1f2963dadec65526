package referenceframe

import (
	"context"
	"math/rand"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/spatialmath"
)

func randomBatch(rnd *rand.Rand, c *Chain, rows int) *mat.Dense {
	qs := mat.NewDense(rows, c.N(), nil)
	for i := 0; i < rows; i++ {
		qs.SetRow(i, RandomConfiguration(c.Limits(), rnd))
	}
	return qs
}

func TestForwardKinematicsBatch(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	c := randomChain(rnd, 6)
	qs := randomBatch(rnd, c, 37)
	tool := spatialmath.TransZ(0.2)

	poses := c.ForwardKinematicsBatch(qs, nil, &tool)
	test.That(t, len(poses), test.ShouldEqual, 37)
	for i := range poses {
		test.That(t, poses[i], test.ShouldResemble, c.ForwardKinematics(qs.RawRowView(i), nil, &tool))
	}

	for _, workers := range []int{0, 1, 4, 100} {
		parallel, err := c.ForwardKinematicsBatchParallel(context.Background(), qs, nil, &tool, workers)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parallel, test.ShouldResemble, poses)
	}
}

func TestForwardKinematicsBatchEmpty(t *testing.T) {
	c := NewChain(NewJointET(RotZ, 0))
	var empty mat.Dense
	poses, err := c.ForwardKinematicsBatchParallel(context.Background(), &empty, nil, nil, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses, test.ShouldBeEmpty)
}

func TestForwardKinematicsBatchCancelled(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	c := randomChain(rnd, 3)
	qs := randomBatch(rnd, c, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	poses, err := c.ForwardKinematicsBatchParallel(ctx, qs, nil, nil, 2)
	test.That(t, err, test.ShouldBeError, context.Canceled)
	test.That(t, poses, test.ShouldBeNil)
}

func BenchmarkForwardKinematics(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	c := randomChain(rnd, 7)
	q := RandomConfiguration(c.Limits(), rnd)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ForwardKinematics(q, nil, nil)
	}
}

func BenchmarkForwardKinematicsBatchParallel(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	c := randomChain(rnd, 7)
	qs := randomBatch(rnd, c, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := c.ForwardKinematicsBatchParallel(context.Background(), qs, nil, nil, 8)
		if err != nil {
			b.Fatal(err)
		}
	}
}

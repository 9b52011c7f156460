package mpc

import "gonum.org/v1/gonum/mat"

// condensed eliminates the states from the sub-problem. With du the control increments over the
// warm start, the predicted state increment of stage i is
//
//	dx[i] = c[i] + G[i] du
//
// and the tracking cost becomes 1/2 du'H du + g'du.
type condensed struct {
	c [LAT_MPC_N + 1]*mat.VecDense // NX
	G [LAT_MPC_N + 1]*mat.Dense    // NX x LAT_MPC_N
	H *mat.Dense                   // LAT_MPC_N x LAT_MPC_N
	g *mat.VecDense                // LAT_MPC_N
}

func newCondensed() *condensed {
	c := &condensed{
		H: mat.NewDense(LAT_MPC_N, LAT_MPC_N, nil),
		g: mat.NewVecDense(LAT_MPC_N, nil),
	}
	for i := range c.c {
		c.c[i] = mat.NewVecDense(NX, nil)
		c.G[i] = mat.NewDense(NX, LAT_MPC_N, nil)
	}
	return c
}

// propagate chains the stage models starting from the fixed initial state x0.
func (c *condensed) propagate(x0 State, xs *[LAT_MPC_N + 1]State, lin *LinearModel) {
	for j := range NX {
		c.c[0].SetVec(j, x0[j]-xs[0][j])
	}
	c.G[0].Zero()
	for i := range LAT_MPC_N {
		c.c[i+1].MulVec(lin.A[i], c.c[i])
		c.G[i+1].Mul(lin.A[i], c.G[i])
		for j := range NX {
			c.c[i+1].SetVec(j, c.c[i+1].AtVec(j)+lin.Defect[i][j])
			c.G[i+1].Set(j, i, c.G[i+1].At(j, i)+lin.B[i].AtVec(j))
		}
	}
}

// predicted is the state of stage i when du is zero.
func (c *condensed) predicted(xs *[LAT_MPC_N + 1]State, i, idx int) float64 {
	return xs[i][idx] + c.c[i].AtVec(idx)
}

// cost builds H and g. Stage 0 is fixed and carries no cost, stages 1..N weigh lateral offset and
// heading, the N controls weigh the total curvature rate.
func (c *condensed) cost(xs *[LAT_MPC_N + 1]State, us *[LAT_MPC_N]float64, yPts, headingPts []float64, w Weights) {
	c.H.Zero()
	c.g.Zero()
	for i := 1; i <= LAT_MPC_N; i++ {
		c.track(xs, i, Y_IDX, w.Path, yPts[i])
		c.track(xs, i, PSI_IDX, w.Heading, headingPts[i])
	}
	for j := range LAT_MPC_N {
		c.H.Set(j, j, c.H.At(j, j)+w.CurvatureRate+hessianRegularization)
		c.g.SetVec(j, c.g.AtVec(j)+w.CurvatureRate*us[j])
	}
}

func (c *condensed) track(xs *[LAT_MPC_N + 1]State, i, idx int, weight, ref float64) {
	if weight == 0 {
		return
	}
	row := c.G[i].RowView(idx)
	residual := c.predicted(xs, i, idx) - ref
	c.H.RankOne(c.H, weight, row, row)
	c.g.AddScaledVec(c.g, weight*residual, row)
}

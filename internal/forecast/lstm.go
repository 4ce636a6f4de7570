package forecast

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// LSTM is a single-layer recurrent network with a linear read-out, trained on sliding
// windows of the min-max scaled series and forecasting recursively.
type LSTM struct {
	Hidden       int
	Window       int
	Epochs       int
	LearningRate float64
	Seed         int64
}

// NewLSTM creates the default network: 16 hidden units, windows of up to 6 steps,
// 5 epochs, seed 42.
func NewLSTM() *LSTM {
	return &LSTM{Hidden: 16, Window: 6, Epochs: 5, LearningRate: 0.01, Seed: 42}
}

func (m *LSTM) Name() string {
	return "LSTM"
}

// Forecast trains on s and predicts horizon steps, feeding each prediction back as input
func (m *LSTM) Forecast(ctx context.Context, s Series, horizon int) ([]float64, error) {
	if err := validate(s, 2, horizon); err != nil {
		return nil, err
	}

	lo, hi := floats.Min(s.Values), floats.Max(s.Values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	scaled := make([]float64, s.Len())
	for i, v := range s.Values {
		scaled[i] = (v - lo) / span
	}

	window := m.Window
	if window > s.Len()-1 {
		window = s.Len() - 1
	}

	net := newLSTMNet(m.Hidden, rand.New(rand.NewSource(m.Seed)))
	opt := newAdam(net.params(), m.LearningRate)
	for epoch := 0; epoch < m.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for start := 0; start+window < len(scaled); start++ {
			net.zeroGrad()
			net.backward(scaled[start:start+window], scaled[start+window])
			opt.step(net.params(), net.grads())
		}
	}

	input := append([]float64(nil), scaled[len(scaled)-window:]...)
	out := make([]float64, horizon)
	for h := range out {
		pred, _ := net.forward(input)
		out[h] = pred*span + lo
		input = append(input[1:], pred)
	}
	return out, nil
}

// gate weights act on z = [x, h_prev]
type lstmNet struct {
	hidden int
	// forget, input, output, candidate gates
	w  [4][]float64 // hidden x (1+hidden), row major
	b  [4][]float64
	wy []float64
	by []float64

	gw  [4][]float64
	gb  [4][]float64
	gwy []float64
	gby []float64
}

type lstmStep struct {
	z          []float64
	f, i, o, g []float64
	cPrev, c   []float64
	h          []float64
}

func newLSTMNet(hidden int, rng *rand.Rand) *lstmNet {
	n := &lstmNet{hidden: hidden}
	bound := 1 / math.Sqrt(float64(hidden))
	width := 1 + hidden
	for k := 0; k < 4; k++ {
		n.w[k] = make([]float64, hidden*width)
		for j := range n.w[k] {
			n.w[k][j] = (rng.Float64()*2 - 1) * bound
		}
		n.b[k] = make([]float64, hidden)
		n.gw[k] = make([]float64, hidden*width)
		n.gb[k] = make([]float64, hidden)
	}
	for j := range n.b[0] {
		n.b[0][j] = 1 // forget gate starts open
	}
	n.wy = make([]float64, hidden)
	for j := range n.wy {
		n.wy[j] = (rng.Float64()*2 - 1) * bound
	}
	n.by = make([]float64, 1)
	n.gwy = make([]float64, hidden)
	n.gby = make([]float64, 1)
	return n
}

func (n *lstmNet) params() [][]float64 {
	return [][]float64{n.w[0], n.w[1], n.w[2], n.w[3], n.b[0], n.b[1], n.b[2], n.b[3], n.wy, n.by}
}

func (n *lstmNet) grads() [][]float64 {
	return [][]float64{n.gw[0], n.gw[1], n.gw[2], n.gw[3], n.gb[0], n.gb[1], n.gb[2], n.gb[3], n.gwy, n.gby}
}

func (n *lstmNet) zeroGrad() {
	for _, g := range n.grads() {
		for i := range g {
			g[i] = 0
		}
	}
}

func (n *lstmNet) forward(inputs []float64) (float64, []lstmStep) {
	H := n.hidden
	width := 1 + H
	h := make([]float64, H)
	c := make([]float64, H)
	steps := make([]lstmStep, 0, len(inputs))

	for _, x := range inputs {
		z := make([]float64, width)
		z[0] = x
		copy(z[1:], h)

		st := lstmStep{z: z, cPrev: c}
		var act [4][]float64
		for k := 0; k < 4; k++ {
			act[k] = make([]float64, H)
			for j := 0; j < H; j++ {
				v := floats.Dot(n.w[k][j*width:(j+1)*width], z) + n.b[k][j]
				if k == 3 {
					act[k][j] = math.Tanh(v)
				} else {
					act[k][j] = sigmoid(v)
				}
			}
		}
		st.f, st.i, st.o, st.g = act[0], act[1], act[2], act[3]

		c = make([]float64, H)
		h = make([]float64, H)
		for j := 0; j < H; j++ {
			c[j] = st.f[j]*st.cPrev[j] + st.i[j]*st.g[j]
			h[j] = st.o[j] * math.Tanh(c[j])
		}
		st.c, st.h = c, h
		steps = append(steps, st)
	}
	return floats.Dot(n.wy, h) + n.by[0], steps
}

// backward accumulates squared-error gradients through time for one window
func (n *lstmNet) backward(inputs []float64, target float64) {
	H := n.hidden
	width := 1 + H
	pred, steps := n.forward(inputs)

	dy := 2 * (pred - target)
	last := steps[len(steps)-1]
	dh := make([]float64, H)
	for j := 0; j < H; j++ {
		n.gwy[j] += dy * last.h[j]
		dh[j] = dy * n.wy[j]
	}
	n.gby[0] += dy

	dcNext := make([]float64, H)
	for t := len(steps) - 1; t >= 0; t-- {
		st := steps[t]
		var d [4][]float64
		for k := range d {
			d[k] = make([]float64, H)
		}
		for j := 0; j < H; j++ {
			tc := math.Tanh(st.c[j])
			dc := dh[j]*st.o[j]*(1-tc*tc) + dcNext[j]
			d[2][j] = dh[j] * tc * st.o[j] * (1 - st.o[j])
			d[0][j] = dc * st.cPrev[j] * st.f[j] * (1 - st.f[j])
			d[1][j] = dc * st.g[j] * st.i[j] * (1 - st.i[j])
			d[3][j] = dc * st.i[j] * (1 - st.g[j]*st.g[j])
			dcNext[j] = dc * st.f[j]
		}

		dz := make([]float64, width)
		for k := 0; k < 4; k++ {
			for j := 0; j < H; j++ {
				row := n.w[k][j*width : (j+1)*width]
				floats.AddScaled(n.gw[k][j*width:(j+1)*width], d[k][j], st.z)
				n.gb[k][j] += d[k][j]
				floats.AddScaled(dz, d[k][j], row)
			}
		}
		dh = dz[1:]
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// adam keeps first and second moment estimates per parameter
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	m, v                  [][]float64
}

func newAdam(params [][]float64, lr float64) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-7}
	for _, p := range params {
		a.m = append(a.m, make([]float64, len(p)))
		a.v = append(a.v, make([]float64, len(p)))
	}
	return a
}

func (a *adam) step(params, grads [][]float64) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for k, p := range params {
		g := grads[k]
		for i := range p {
			a.m[k][i] = a.beta1*a.m[k][i] + (1-a.beta1)*g[i]
			a.v[k][i] = a.beta2*a.v[k][i] + (1-a.beta2)*g[i]*g[i]
			p[i] -= a.lr * (a.m[k][i] / c1) / (math.Sqrt(a.v[k][i]/c2) + a.eps)
		}
	}
}

package stretch

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// planCache hands out FFT plans by size. Plans carry scratch state, so a
// plan is owned by one caller between get and put.
type planCache struct {
	mu   sync.Mutex
	free map[int][]*algofft.Plan[complex128]
}

var plans = &planCache{free: make(map[int][]*algofft.Plan[complex128])}

func (c *planCache) get(n int) (*algofft.Plan[complex128], error) {
	c.mu.Lock()
	if list := c.free[n]; len(list) > 0 {
		p := list[len(list)-1]
		c.free[n] = list[:len(list)-1]
		c.mu.Unlock()

		return p, nil
	}
	c.mu.Unlock()

	p, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("stretch: FFT plan for size %d: %w", n, err)
	}

	return p, nil
}

func (c *planCache) put(n int, p *algofft.Plan[complex128]) {
	if p == nil {
		return
	}

	c.mu.Lock()
	c.free[n] = append(c.free[n], p)
	c.mu.Unlock()
}

package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses execution for a random time between min and max (milliseconds)
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	duration := time.Duration(rand.Intn(max-min)+min) * time.Millisecond
	time.Sleep(duration)
}

// MouseJiggle simulates random mouse movements to avoid idle detection
func MouseJiggle(page playwright.Page) error {
	for i := 0; i < 3; i++ {
		x := float64(rand.Intn(800) + 100) //100-900
		y := float64(rand.Intn(600) + 100) //100-700
		if err := page.Mouse().Move(x, y); err != nil {
			return err
		}
		RandomDelay(100, 300)
	}
	return nil
}

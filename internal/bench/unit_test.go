package bench

import (
	"testing"
	"time"

	"github.com/chzyer/test"
)

func TestUnit(t *testing.T) {
	defer test.New(t)

	test.Equal(Unit(512), "512B")
	test.Equal(Unit(2048), "2KB")
	test.Equal(Unit(5<<20), "5MB")
}

func TestRate(t *testing.T) {
	defer test.New(t)

	test.Equal(Rate(1<<20, time.Second), "1MB/s")
	test.Equal(Rate(100, 0), "NaN")
}

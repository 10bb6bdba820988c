package cursor_test

import (
	"fmt"

	"github.com/matzehuels/roadreveal/pkg/cursor"
)

func ExampleCursor() {
	c := cursor.New([]string{"a", "b", "c", "d"}, cursor.Config{Step: 0.5})
	c.Start()
	for c.Running() {
		c.Tick(cursor.Signal{})
		fmt.Println(c.Revealed(), c.State())
	}
	// Output:
	// [] running
	// [a] running
	// [a] running
	// [a b] running
	// [a b] running
	// [a b c] complete
}

func ExampleLevel() {
	c := cursor.New(make([]int, 100), cursor.Config{})
	c.Start()
	c.Tick(cursor.Level(0.01)) // below the silence threshold
	fmt.Printf("%.2f\n", c.Position())
	c.Tick(cursor.Level(0.3))
	fmt.Printf("%.2f\n", c.Position())
	// Output:
	// 0.00
	// 0.11
}

package lineage_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/lineage"
)

func Example() {
	store, _ := history.FromRecords([]history.BirthRecord{
		{ChildID: 0, Epoch: 0, Parents: history.Orphan},
		{ChildID: 1, Epoch: 0, Parents: history.Orphan},
		{ChildID: 2, Epoch: 1, Parents: [2]uint64{0, history.NoParent}},
	})

	ctx := context.Background()
	layout, _ := lineage.Build(ctx, store.Index(), lineage.Square(800))
	curves, _ := lineage.BuildCurves(ctx, layout, lineage.CurveOptions{SkipSeparators: true})

	for _, c := range curves {
		fmt.Printf("%d -> %d: %v\n", c.Child, c.Parent, c.Points)
	}
	// Output:
	// 2 -> 0: [{600 400} {400 400} {400 200} {200 200}]
}

func ExampleLayout_FindNode() {
	store, _ := history.FromRecords([]history.BirthRecord{
		{ChildID: 7, Epoch: 0, Parents: history.Orphan},
	})
	layout, _ := lineage.Build(context.Background(), store.Index(), lineage.Square(100))

	n, ok, _ := layout.FindNode(0, 7)
	fmt.Println(ok, n.Position)

	_, _, err := layout.FindNode(3, 7)
	fmt.Println(err)
	// Output:
	// true {50 50}
	// INVALID_EPOCH: epoch 3 out of range [0, 1)
}

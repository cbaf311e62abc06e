package output_test

import (
	"fmt"

	"github.com/blackwell-systems/pkgstash/internal/output"
)

// Example showing the bookmark listing
func ExampleRenderBookmarks() {
	fmt.Print(output.RenderBookmarks([]uint32{42, 7}))
	// Output:
	// 2 bookmark(s):
	//   42
	//   7
}

// Example showing how to drive a spinner through restore stages
func ExampleSpinner() {
	spinner := output.NewSpinner("Restoring bookmarks")
	spinner.Start()

	spinner.UpdateMessage("Restoring repositories")

	spinner.StopWithMessage("✓ Restore complete")
}

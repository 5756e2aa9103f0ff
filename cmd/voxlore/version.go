package main

import (
	"fmt"

	"github.com/voxlore/voxlore/internal/common"
)

// runVersion prints version information
func runVersion() {
	fmt.Printf("Voxlore %s\n", common.GetFullVersion())
}

package app

import (
	"fmt"
	"strings"
)

// NextSteps returns the guide printed after a successful run
func NextSteps(appName, packageManager string) string {
	var b strings.Builder
	b.WriteString("Next steps:\n")
	fmt.Fprintf(&b, "1. Navigate to the created directory: cd %s\n", appName)
	fmt.Fprintf(&b, "2. Install dependencies: %s install\n", packageManager)
	fmt.Fprintf(&b, "3. Start the app: %s start\n", packageManager)
	return b.String()
}

/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package build

import "fmt"

var (
	Major    = 1
	Minor    = 1
	Revision = 0

	Version = fmt.Sprintf("%d.%d.%d", Major, Minor, Revision)
)

func UserAgent() string {
	return fmt.Sprintf("egs-sdk-go/%s", Version)
}

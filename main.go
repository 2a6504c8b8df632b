/*
Copyright 2023 The yvcweb Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import "github.com/yvc-project/yvcweb/internal/cmd"

func main() {
	cmd.Execute()
}

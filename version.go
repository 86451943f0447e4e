// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package banksim

// Version is the semantic version of this application
var Version = "v0.1.0-dev"

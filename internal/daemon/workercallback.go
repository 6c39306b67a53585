// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"fmt"
	"os"
)

// RunWorkerCallback is the worker entrypoint used for Callback specs. The
// host binary's main() calls this when os.Args[1] == WorkerCallbackArg,
// passing os.Args[2] (the registered callback name) as name.
//
// This process is a completely fresh exec of the binary: none of the
// state or closures from whatever process originally called
// daemon.Start are present. The callback function itself must therefore
// have been (re-)registered by this same binary's own init(), which runs
// again here exactly as it does on every invocation — the registry
// pattern is what lets a "run this function as my worker" request
// survive the process boundary a callback closure cannot cross.
func RunWorkerCallback(name string) {
	fn, ok := lookupCallback(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "guardian: no callback registered under name %q\n", name)
		os.Exit(1)
	}

	if err := fn(); err != nil {
		fmt.Fprintf(os.Stderr, "guardian: callback %q failed: %v\n", name, err)
		os.Exit(1)
	}
	os.Exit(0)
}

/*
Copyright © 2026 the Porygon authors.
This file is part of Porygon.

Porygon is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Porygon is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Porygon.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash computes stable identifiers for arbitrary values.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hexadecimal hash key for the specified object.
// Maps, whose gob encoding depends on iteration order, and objects
// that cannot be gob-encoded are hashed by their spew representation
// instead.
func Hash(object interface{}) string {
	h := fnv.New64a()
	if reflect.ValueOf(object).Kind() == reflect.Map || gob.NewEncoder(h).Encode(object) != nil {
		h.Reset()
		printer := spew.ConfigState{
			Indent:                  " ",
			SortKeys:                true,
			DisableMethods:          true,
			SpewKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		printer.Fprintf(h, "%#v", object)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ID returns an identifier suitable for use as an HTML element id,
// made up of prefix and the hash of object.
func ID(prefix string, object interface{}) string {
	return prefix + "_" + Hash(object)
}

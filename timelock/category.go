// Copyright 2025 Blink Labs Software
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

package timelock

import (
	"fmt"
	"strings"
)

// Category selects the release offset applied by the categorized lock helpers
type Category int

const (
	CategoryNone Category = iota
	CategoryDirect
	CategoryReferral
	CategoryPurchase
)

// Categories lists the categorized lock kinds in withdrawal order
var Categories = []Category{CategoryReferral, CategoryDirect, CategoryPurchase}

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return ""
	case CategoryDirect:
		return "direct"
	case CategoryReferral:
		return "referral"
	case CategoryPurchase:
		return "purchase"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory accepts the names returned by String
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "":
		return CategoryNone, nil
	case "direct":
		return CategoryDirect, nil
	case "referral":
		return CategoryReferral, nil
	case "purchase":
		return CategoryPurchase, nil
	default:
		return CategoryNone, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

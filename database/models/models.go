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

package models

// MigrateModels contains a list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&ActiveGrant{},
	&ConversionBalance{},
	&Controller{},
	&Deployment{},
	&Grant{},
	&LockEntry{},
	&Locker{},
	&Operator{},
	&Parameter{},
	&Sequence{},
	&TokenAllowance{},
	&TokenBalance{},
}

// State is the full relational image of a deployment. The metadata store
// replaces every table with these rows in a single transaction.
type State struct {
	Deployments        []Deployment
	Parameters         []Parameter
	Sequences          []Sequence
	Controllers        []Controller
	TokenBalances      []TokenBalance
	TokenAllowances    []TokenAllowance
	LockEntries        []LockEntry
	Lockers            []Locker
	ConversionBalances []ConversionBalance
	Operators          []Operator
	Grants             []Grant
	ActiveGrants       []ActiveGrant
}

// Empty reports whether nothing has been deployed yet
func (s *State) Empty() bool {
	return s == nil || len(s.Deployments) == 0
}

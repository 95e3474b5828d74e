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

import (
	dbtypes "github.com/PedroGalveias/OwkenERC20/database/types"
	"github.com/PedroGalveias/OwkenERC20/types"
)

// Deployment records a component address handed out by the contract registry
type Deployment struct {
	Name     string        `gorm:"uniqueIndex;size:64;not null"`
	Address  types.Address `gorm:"type:text;uniqueIndex;not null"`
	Deployer types.Address `gorm:"type:text;index;not null"`
	ID       uint          `gorm:"primarykey"`
	Nonce    uint64        `gorm:"not null"`
}

func (Deployment) TableName() string {
	return "deployment"
}

// Parameter holds a deployment-wide setting such as the window opening time
type Parameter struct {
	Key   string `gorm:"column:param_key;primaryKey;size:255"`
	Value string `gorm:"type:text;not null"`
}

func (Parameter) TableName() string {
	return "parameter"
}

// Sequence holds the next identifier handed out by a component
type Sequence struct {
	Name  string         `gorm:"primaryKey;size:64"`
	Value dbtypes.Uint64 `gorm:"type:text;not null"`
}

func (Sequence) TableName() string {
	return "sequence"
}

// Controller records the single privileged account of a component
type Controller struct {
	Component string        `gorm:"primaryKey;size:64"`
	Account   types.Address `gorm:"type:text;not null"`
}

func (Controller) TableName() string {
	return "controller"
}

// This file is part of MinIO
// Copyright (c) 2026 MinIO, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package utils

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// ToYAML marshals obj to YAML.
func ToYAML(obj interface{}) (string, error) {
	formattedObj, err := yaml.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("error marshaling to YAML: %w", err)
	}
	return string(formattedObj), nil
}

// ToJSON marshals obj to indented JSON.
func ToJSON(obj interface{}) (string, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("unable to marshal object; %w", err)
	}
	return string(data), nil
}

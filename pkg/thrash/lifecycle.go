/*
 * Copyright 2021-2024 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package thrash

import (
	fsm "github.com/qmuntal/stateless"
)

// The engine walks its physical address snapshot through these states.
// A snapshot is taken by probing, bucketed by indexing and invalidated by
// remapping. Probing is allowed from any state so a fresh snapshot is
// always reachable, but the index can only be built from a fresh probe.
var (
	allocatedState = fsm.State("allocated")
	probedState    = fsm.State("probed")
	indexedState   = fsm.State("indexed")
	remappedState  = fsm.State("remapped")
	measuredState  = fsm.State("measured")
)

var (
	probeTransition   = fsm.Trigger("probe")
	indexTransition   = fsm.Trigger("index")
	remapTransition   = fsm.Trigger("remap")
	measureTransition = fsm.Trigger("measure")
)

func newLifecycle() *fsm.StateMachine {
	sm := fsm.NewStateMachine(allocatedState)
	sm.
		Configure(allocatedState).
		Permit(probeTransition, probedState)
	sm.
		Configure(probedState).
		PermitReentry(probeTransition).
		Permit(indexTransition, indexedState)
	sm.
		Configure(indexedState).
		Permit(probeTransition, probedState).
		Permit(remapTransition, remappedState)
	sm.
		Configure(remappedState).
		Permit(probeTransition, probedState).
		PermitReentry(remapTransition).
		Permit(measureTransition, measuredState)
	sm.
		Configure(measuredState).
		Permit(probeTransition, probedState).
		Permit(remapTransition, remappedState).
		PermitReentry(measureTransition)
	return sm
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import "fmt"

// Routine is a remote operation number. Its high bits identify the
// subsystem that implements it.
type Routine int64

const (
	RoutineKickstartService   Routine = 702
	RoutineAttachService      Routine = 703
	RoutineBlameService       Routine = 707
	RoutinePrintService       Routine = 708
	RoutineRunstats           Routine = 709
	RoutineLoad               Routine = 800
	RoutineUnload             Routine = 801
	RoutineEnable             Routine = 808
	RoutineDisable            Routine = 809
	RoutineServiceKill        Routine = 812
	RoutineServiceStart       Routine = 813
	RoutineServiceStop        Routine = 814
	RoutineList               Routine = 815
	RoutineSetenv             Routine = 819
	RoutineGetenv             Routine = 820
	RoutineResolvePort        Routine = 822
	RoutineExamine            Routine = 823
	RoutineLimit              Routine = 825
	RoutinePrint              Routine = 828
	RoutineDumpJetsamCategory Routine = 837
)

// Reserved message fields.
const (
	KeySubsystem = "subsystem"
	KeyRoutine   = "routine"
	KeyError     = "error"
)

var routineNames = map[Routine]string{
	RoutineKickstartService:   "kickstart-service",
	RoutineAttachService:      "attach-service",
	RoutineBlameService:       "blame-service",
	RoutinePrintService:       "print-service",
	RoutineRunstats:           "runstats",
	RoutineLoad:               "load",
	RoutineUnload:             "unload",
	RoutineEnable:             "enable",
	RoutineDisable:            "disable",
	RoutineServiceKill:        "service-kill",
	RoutineServiceStart:       "service-start",
	RoutineServiceStop:        "service-stop",
	RoutineList:               "list",
	RoutineSetenv:             "setenv",
	RoutineGetenv:             "getenv",
	RoutineResolvePort:        "resolve-port",
	RoutineExamine:            "examine",
	RoutineLimit:              "limit",
	RoutinePrint:              "print",
	RoutineDumpJetsamCategory: "dump-jetsam-category",
}

// Subsystem returns the subsystem number, the routine shifted right by
// eight bits.
func (r Routine) Subsystem() int64 {
	return int64(r) >> 8
}

func (r Routine) String() string {
	if name, ok := routineNames[r]; ok {
		return name
	}
	return fmt.Sprintf("routine %d", int64(r))
}

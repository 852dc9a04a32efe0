package component

import "github.com/milk9111/npcsense/faction"

type FactionMember struct {
	Faction faction.ID
}

var FactionMemberComponent = NewComponent[FactionMember]()

package actions

import (
	"parkcraft.ai/internal/gameaction"
)

// Types lists every action type the game supports, in wire-id order.
var Types = []gameaction.Type{
	TypeLandBuyRights,
	TypeLandSetRights,
	TypeWaterSetHeight,
	TypeSmallSceneryPlace,
	TypeSmallSceneryRemove,
	TypeTrackPlace,
	TypeTrackRemove,
	TypeMazeSetTrack,
	TypeRideCreate,
	TypeRideDemolish,
	TypeRideSetName,
	TypeRideSetSetting,
	TypeRideSetStatus,
	TypeParkSetName,
	TypeCheatSet,
	TypePauseToggle,
}

// Register adds a factory and permission class for every action type.
func Register(reg *gameaction.Registry) error {
	entries := []struct {
		perm gameaction.Permission
		f    gameaction.Factory
	}{
		{gameaction.PermTerraform, func() gameaction.Action { return &LandBuyRights{} }},
		{gameaction.PermEditor, func() gameaction.Action { return &LandSetRights{} }},
		{gameaction.PermTerraform, func() gameaction.Action { return &WaterSetHeight{} }},
		{gameaction.PermScenery, func() gameaction.Action { return &SmallSceneryPlace{} }},
		{gameaction.PermScenery, func() gameaction.Action { return &SmallSceneryRemove{} }},
		{gameaction.PermRideConstruction, func() gameaction.Action { return &TrackPlace{} }},
		{gameaction.PermRideConstruction, func() gameaction.Action { return &TrackRemove{} }},
		{gameaction.PermRideConstruction, func() gameaction.Action { return &MazeSetTrack{} }},
		{gameaction.PermRideConstruction, func() gameaction.Action { return &RideCreate{} }},
		{gameaction.PermRideConstruction, func() gameaction.Action { return &RideDemolish{} }},
		{gameaction.PermRideProperties, func() gameaction.Action { return &RideSetName{} }},
		{gameaction.PermRideProperties, func() gameaction.Action { return &RideSetSetting{} }},
		{gameaction.PermRideProperties, func() gameaction.Action { return &RideSetStatus{} }},
		{gameaction.PermParkProperties, func() gameaction.Action { return &ParkSetName{} }},
		{gameaction.PermCheat, func() gameaction.Action { return &CheatSet{} }},
		{gameaction.PermTogglePause, func() gameaction.Action { return &PauseToggle{} }},
	}
	for _, e := range entries {
		if err := reg.Register(e.perm, e.f); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every action type, checked for
// completeness.
func NewRegistry() (*gameaction.Registry, error) {
	reg := gameaction.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Validate(Types); err != nil {
		return nil, err
	}
	return reg, nil
}

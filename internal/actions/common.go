// Package actions implements the concrete game actions.
package actions

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

const (
	TypeLandBuyRights      gameaction.Type = "land_buy_rights"
	TypeLandSetRights      gameaction.Type = "land_set_rights"
	TypeWaterSetHeight     gameaction.Type = "water_set_height"
	TypeSmallSceneryPlace  gameaction.Type = "small_scenery_place"
	TypeSmallSceneryRemove gameaction.Type = "small_scenery_remove"
	TypeTrackPlace         gameaction.Type = "track_place"
	TypeTrackRemove        gameaction.Type = "track_remove"
	TypeMazeSetTrack       gameaction.Type = "maze_set_track"
	TypeRideCreate         gameaction.Type = "ride_create"
	TypeRideDemolish       gameaction.Type = "ride_demolish"
	TypeRideSetName        gameaction.Type = "ride_set_name"
	TypeRideSetSetting     gameaction.Type = "ride_set_setting"
	TypeRideSetStatus      gameaction.Type = "ride_set_status"
	TypeParkSetName        gameaction.Type = "park_set_name"
	TypeCheatSet           gameaction.Type = "cheat_set"
	TypePauseToggle        gameaction.Type = "pause_toggle"
)

var directionLabels = []string{"west", "north", "east", "south"}

func fail(status gameaction.Status, title, msg locale.StringID) gameaction.Result {
	return gameaction.Fail(status, title, msg)
}

func invalid(title, msg locale.StringID) gameaction.Result {
	return gameaction.Fail(gameaction.StatusInvalidParameters, title, msg)
}

func offEdge(title locale.StringID) gameaction.Result {
	return invalid(title, locale.StrOffEdgeOfMap)
}

// clearanceFailure turns a failed clearance check into a result.
func clearanceFailure(title locale.StringID, cr world.ClearanceResult) gameaction.Result {
	switch cr.Err {
	case world.ClearanceOffEdge:
		return offEdge(title)
	case world.ClearanceForbidden:
		return fail(gameaction.StatusDisallowed, title, cr.Message)
	}
	return fail(gameaction.StatusNoClearance, title, cr.Message)
}

func rideNotFound(st *world.State, t gameaction.Type, title locale.StringID, id world.RideID) gameaction.Result {
	st.Log.Error("ride not found", zap.String("action", string(t)), zap.Uint16("ride", uint16(id)))
	return invalid(title, locale.StrRideNotFound)
}

// tileCentre is the centre of c's tile at height z, used as the feedback
// position of single-tile actions.
func tileCentre(c world.CoordsXY, z int32) world.CoordsXYZ {
	t := c.TileStart()
	return world.CoordsXYZ{X: t.X + world.TileSize/2, Y: t.Y + world.TileSize/2, Z: z}
}

func ceil8(v int32) int32 { return world.Floor2(v+world.CoordsZStep-1, world.CoordsZStep) }

// displayName turns an object identifier like "log_flume" into "Log Flume".
func displayName(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

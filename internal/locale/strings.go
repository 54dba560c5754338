// Package locale holds the opaque message identifiers carried by action
// results. Text lookup belongs to whoever renders the result; the English
// table here only backs tooling and logs.
package locale

import "strconv"

type StringID uint16

const (
	StrNone StringID = iota

	// Titles.
	StrCantBuyLand
	StrCantBuyConstructionRightsHere
	StrCantChangeLandRights
	StrCantChangeWaterLevel
	StrCantPositionThisHere
	StrCantRemoveThis
	StrRideConstructionCantConstructThisHere
	StrRideConstructionCantRemoveThis
	StrCantCreateNewRideAttraction
	StrCantDemolishRide
	StrCantRefurbishRide
	StrCantRenameRide
	StrCantRenamePark
	StrCantChangeOperatingMode
	StrCantChangeInspectionInterval
	StrCantChangeLiftHillSpeed
	StrCantChangeNumberOfCircuits
	StrCantOpen
	StrCantClose
	StrCantTest
	StrCantSetCheat

	// Messages.
	StrOffEdgeOfMap
	StrTileElementLimitReached
	StrUnknownObjectType
	StrLandNotOwnedByPark
	StrLandNotForSale
	StrConstructionRightsNotForSale
	StrCantBuildThisUnderwater
	StrCanOnlyBuildThisAboveGround
	StrCanOnlyBuildThisOnLand
	StrCantBuildPartlyAboveAndPartlyBelowGround
	StrCantBuildPartlyAboveAndPartlyBelowWater
	StrLevelLandRequired
	StrInvalidHeight
	StrTooLow
	StrTooHigh
	StrTooHighForSupports
	StrRaiseOrLowerLandFirst
	StrTrackInTheWay
	StrSceneryInTheWay
	StrFootpathInTheWay
	StrWallInTheWay
	StrObjectInTheWay
	StrForbiddenByLocalAuthority
	StrLocalAuthorityWontAllowConstructionAboveTreeHeight
	StrLocalAuthorityForbidsDemolition
	StrTooManyRides
	StrInvalidRideType
	StrInvalidSelectionOfObjects
	StrInvalidColour
	StrInvalidInspectionInterval
	StrInvalidRideMode
	StrInvalidSpeed
	StrInvalidNumberOfCircuits
	StrMustBeClosedFirst
	StrRefurbishNotNeeded
	StrNameInUse
	StrInvalidName
	StrSurfaceElementNotFound
	StrTrackElementNotFound
	StrSceneryElementNotFound
	StrNotAllowedToModifyStation
	StrOnlyOneOnRidePhotoPerRide
	StrOnlyOneCableLiftHillPerRide
	StrConstructionNotPossibleWhileGameIsPaused
	StrOnlyInScenarioEditor
	StrNotEnoughCash
	StrInvalidCheat
	StrRideHasNoStation
	StrRideNotFound
	StrUnknownError

	strCount
)

var english = [strCount]string{
	StrNone:                                               "",
	StrCantBuyLand:                                        "Can't buy land...",
	StrCantBuyConstructionRightsHere:                      "Can't buy construction rights here...",
	StrCantChangeLandRights:                               "Can't change land rights...",
	StrCantChangeWaterLevel:                               "Can't change water level...",
	StrCantPositionThisHere:                               "Can't position this here...",
	StrCantRemoveThis:                                     "Can't remove this...",
	StrRideConstructionCantConstructThisHere:              "Can't construct this here...",
	StrRideConstructionCantRemoveThis:                     "Can't remove this...",
	StrCantCreateNewRideAttraction:                        "Can't create new ride/attraction...",
	StrCantDemolishRide:                                   "Can't demolish ride/attraction...",
	StrCantRefurbishRide:                                  "Can't refurbish ride/attraction...",
	StrCantRenameRide:                                     "Can't rename ride/attraction...",
	StrCantRenamePark:                                     "Can't rename park...",
	StrCantChangeOperatingMode:                            "Can't change operating mode...",
	StrCantChangeInspectionInterval:                       "Can't change inspection interval...",
	StrCantChangeLiftHillSpeed:                            "Can't change lift hill speed...",
	StrCantChangeNumberOfCircuits:                         "Can't change number of circuits...",
	StrCantOpen:                                           "Can't open...",
	StrCantClose:                                          "Can't close...",
	StrCantTest:                                           "Can't start test...",
	StrCantSetCheat:                                       "Can't set cheat...",
	StrOffEdgeOfMap:                                       "Off edge of map!",
	StrTileElementLimitReached:                            "Map element limit reached",
	StrUnknownObjectType:                                  "Unknown object type",
	StrLandNotOwnedByPark:                                 "Land not owned by park!",
	StrLandNotForSale:                                     "Land not for sale!",
	StrConstructionRightsNotForSale:                       "Construction rights not for sale!",
	StrCantBuildThisUnderwater:                            "Can't build this underwater!",
	StrCanOnlyBuildThisAboveGround:                        "Can only build this above ground!",
	StrCanOnlyBuildThisOnLand:                             "Can only build this on land!",
	StrCantBuildPartlyAboveAndPartlyBelowGround:           "Can't build partly above and partly below ground!",
	StrCantBuildPartlyAboveAndPartlyBelowWater:            "Can't build partly above and partly below water!",
	StrLevelLandRequired:                                  "Level land required",
	StrInvalidHeight:                                      "Invalid height!",
	StrTooLow:                                             "Too low!",
	StrTooHigh:                                            "Too high!",
	StrTooHighForSupports:                                 "Too high for supports!",
	StrRaiseOrLowerLandFirst:                              "Raise or lower land first",
	StrTrackInTheWay:                                      "Ride track in the way",
	StrSceneryInTheWay:                                    "Scenery in the way",
	StrFootpathInTheWay:                                   "Footpath in the way",
	StrWallInTheWay:                                       "Wall in the way",
	StrObjectInTheWay:                                     "Object in the way",
	StrForbiddenByLocalAuthority:                          "Forbidden by the local authority!",
	StrLocalAuthorityWontAllowConstructionAboveTreeHeight: "Local authority won't allow construction above tree-height!",
	StrLocalAuthorityForbidsDemolition:                    "Local authority forbids demolition or modifications to this ride!",
	StrTooManyRides:                                       "Too many rides/attractions",
	StrInvalidRideType:                                    "Invalid ride type",
	StrInvalidSelectionOfObjects:                          "Invalid selection of objects",
	StrInvalidColour:                                      "Invalid colour",
	StrInvalidInspectionInterval:                          "Invalid inspection interval",
	StrInvalidRideMode:                                    "Invalid operating mode",
	StrInvalidSpeed:                                       "Invalid speed",
	StrInvalidNumberOfCircuits:                            "Invalid number of circuits",
	StrMustBeClosedFirst:                                  "Must be closed first",
	StrRefurbishNotNeeded:                                 "Can't refurbish, ride is still new",
	StrNameInUse:                                          "Name already in use",
	StrInvalidName:                                        "Invalid name",
	StrSurfaceElementNotFound:                             "Surface element not found",
	StrTrackElementNotFound:                               "Track element not found",
	StrSceneryElementNotFound:                             "Scenery element not found",
	StrNotAllowedToModifyStation:                          "Not allowed to modify station of this ride",
	StrOnlyOneOnRidePhotoPerRide:                          "Only one on-ride photo section allowed per ride",
	StrOnlyOneCableLiftHillPerRide:                        "Only one cable lift hill allowed per ride",
	StrConstructionNotPossibleWhileGameIsPaused:           "Construction is not possible while the game is paused!",
	StrOnlyInScenarioEditor:                               "Only available in the scenario editor",
	StrNotEnoughCash:                                      "Not enough cash",
	StrInvalidCheat:                                       "Invalid cheat",
	StrRideHasNoStation:                                   "Ride has no station",
	StrRideNotFound:                                       "Ride not found",
	StrUnknownError:                                       "Unknown error",
}

// Text returns the default English text for id, or "" if id is unknown.
func Text(id StringID) string {
	if id >= strCount {
		return ""
	}
	return english[id]
}

func (id StringID) String() string {
	if s := Text(id); s != "" {
		return s
	}
	return "str#" + strconv.Itoa(int(id))
}

package world

import (
	"github.com/yohamta/donburi"

	"github.com/udisondev/rogue2d/internal/game/weapon"
	"github.com/udisondev/rogue2d/internal/model"
)

// PlayerData — компонент игрока: сама сущность и её оружие.
type PlayerData struct {
	Player  *model.Player
	Weapons []*weapon.Weapon
}

// EnemyData — компонент врага.
type EnemyData struct {
	Enemy *model.Enemy
}

var (
	Player = donburi.NewComponentType[PlayerData]()
	Enemy  = donburi.NewComponentType[EnemyData]()
)

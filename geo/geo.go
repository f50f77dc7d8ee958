package geo

import (
	"math"

	"github.com/samber/lo"
)

const (
	// 地球半径（单位：米）
	EARTH_RADIUS = 6371000
)

// 经纬度坐标（单位：度）
type Coordinates struct {
	Lat float64 `json:"latitude" bson:"lat"`
	Lng float64 `json:"longitude" bson:"lng"`
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

// 两点间的球面距离（单位：米）
func Distance(from, to Coordinates) float64 {
	if from == to {
		return 0
	}
	lat1, lat2 := degToRad(from.Lat), degToRad(to.Lat)
	dLng := math.Abs(degToRad(from.Lng - to.Lng))
	cos := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng)
	// 浮点误差可能使cos略大于1
	return math.Acos(lo.Clamp(cos, -1, 1)) * EARTH_RADIUS
}

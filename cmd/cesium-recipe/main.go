package main

import "github.com/cesiumgs/cesium-recipe/cmd/cesium-recipe/internal"

func main() {
	internal.Execute()
}

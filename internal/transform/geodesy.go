package transform

import "math"

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// ObserverPosition holds an antenna location in both geodetic and ECEF frames.
// Both forms are kept so a single observer can be reused for every sample of a day.
type ObserverPosition struct {
	LatRad, LonRad, AltM float64 // geodetic (radians, meters above ellipsoid), longitude east positive
	ECEFx, ECEFy, ECEFz  float64 // ECEF (meters)
}

// NewObserverPosition creates an ObserverPosition from geodetic coordinates.
// Latitude and longitude are in degrees, altitude in meters above the WGS-84 ellipsoid.
func NewObserverPosition(latDeg, lonDeg, altM float64) ObserverPosition {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	// Radius of curvature in the prime vertical.
	N := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return ObserverPosition{
		LatRad: lat,
		LonRad: lon,
		AltM:   altM,
		ECEFx:  (N + altM) * cosLat * cosLon,
		ECEFy:  (N + altM) * cosLat * sinLon,
		ECEFz:  (N*(1-wgs84E2) + altM) * sinLat,
	}
}

// ObserverFromECEF creates an ObserverPosition from geocentric coordinates in
// meters, the form antenna positions are published in.
func ObserverFromECEF(x, y, z float64) ObserverPosition {
	geo := ECEFToGeodetic(x, y, z)
	return ObserverPosition{
		LatRad: geo.LatDeg * math.Pi / 180.0,
		LonRad: geo.LonDeg * math.Pi / 180.0,
		AltM:   geo.AltM,
		ECEFx:  x,
		ECEFy:  y,
		ECEFz:  z,
	}
}

// GeodeticPoint holds a geodetic position (latitude/longitude in degrees, altitude in meters).
type GeodeticPoint struct {
	LatDeg, LonDeg, AltM float64
}

// ECEFToGeodetic converts ECEF coordinates (meters) to geodetic coordinates
// using the iterative Bowring method. Converges in 2-3 iterations near the surface.
func ECEFToGeodetic(x, y, z float64) GeodeticPoint {
	lon := math.Atan2(y, x)

	p := math.Sqrt(x*x + y*y)

	// Initial estimate using Bowring's method.
	lat := math.Atan2(z, p*(1-wgs84E2))

	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		N := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(z+wgs84E2*N*sinLat, p)
	}

	sinLat, cosLat := math.Sincos(lat)
	N := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - N
	} else {
		alt = math.Abs(z)/math.Abs(sinLat) - N*(1-wgs84E2)
	}

	return GeodeticPoint{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: lon * 180.0 / math.Pi,
		AltM:   alt,
	}
}

// LookAngles computes azimuth and elevation for a line-of-sight
// vector (rx, ry, rz) given in ECEF axes and rooted at the observer.
//
// Uses the SEZ (South-East-Zenith) topocentric rotation per Vallado Section 4.4.
// Azimuth: 0 = North, measured clockwise. Elevation: 0 = horizon, 90 = zenith.
func (o ObserverPosition) LookAngles(rx, ry, rz float64) Horizontal {
	sinLat, cosLat := math.Sincos(o.LatRad)
	sinLon, cosLon := math.Sincos(o.LonRad)

	south := sinLat*cosLon*rx + sinLat*sinLon*ry - cosLat*rz
	east := -sinLon*rx + cosLon*ry
	zenith := cosLat*cosLon*rx + cosLat*sinLon*ry + sinLat*rz

	rangeMag := math.Sqrt(south*south + east*east + zenith*zenith)

	el := math.Asin(clamp(zenith/rangeMag, -1, 1))

	// In SEZ, North = -South direction, so az = atan2(east, -south).
	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	return Horizontal{
		AzimuthDeg:   normalizeDeg(az * 180.0 / math.Pi),
		ElevationDeg: el * 180.0 / math.Pi,
	}
}

// PlausibleAntenna reports whether an ECEF position (meters) lies within a
// few tens of kilometres of the WGS-84 surface. Antennas elsewhere are most
// likely a unit or sign mistake in the configuration.
func PlausibleAntenna(x, y, z float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) {
		return false
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) || math.IsInf(z, 0) {
		return false
	}
	if x == 0 && y == 0 && z == 0 {
		return false
	}
	alt := ECEFToGeodetic(x, y, z).AltM
	return alt > -12000 && alt < 50000
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// normalizeDeg folds an angle into [0, 360).
func normalizeDeg(d float64) float64 {
	return wrap(d, 360)
}

// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(configGuide)
	app.Add(costFilesGuide)
	app.Add(presenceFilesGuide)
	app.Add(projectsGuide)
}

var configGuide = &command.Command{
	Usage: "config-files",
	Short: "about configuration files",
	Long: `
A dispersal analysis is defined by a configuration file in YAML format. The
configuration file is read by the command "dispersal run".

The configuration file has the following fields:

	- workdir       the directory of the input and output files. If
	                empty, it is the directory of the configuration
	                file. A relative path is resolved from the directory
	                of the configuration file.
	- run           the name of the run, used as the prefix of the output
	                files. Required.
	- presence      the presence data, with the fields:
	    - file            the presence file
	    - year_field      the field with the observation year. Required.
	    - location_field  the field with the location name
	    - crs             the coordinate reference system of the records.
	                      If empty, records are in the coordinates of the
	                      cost grid.
	- cost          the cost grid, with the fields:
	    - file  the cost grid file
	    - crs   the coordinate reference system of the grid
	- start_year    the first year of the analysis. Records of this year
	                are the origin of the first paths.
	- end_year      the last year of the analysis (inclusive).
	- threshold     the cost threshold used to group paths, with the
	                fields:
	    - value     the threshold value
	    - absolute  if true, the value is a cost. Otherwise the value is
	                a quantile of the path costs.
	                If no threshold is defined, the upper fence of the path
	                costs is used.
	- sensitivity   the values tested in the sensitivity analysis, with the
	                fields:
	    - cost    the cost thresholds, with the fields "from", "to",
	              "step", and "absolute". If not defined, only the
	              upper fence of the path costs is tested.
	    - robust  the minimum median number of records per year of a
	              robust group, with the fields "from", "to", "step",
	              and "relative". If not defined, all groups are
	              robust.
	- mode          either "full" (the default) or "sensitivity".
	- connectivity  either 8 (the default) or 4.
	- workers       the number of parallel workers. By default all CPUs
	                are used.
	- plot          if true, a plot of the maximum distance of each group
	                is saved.

Here is an example file:

	run: ragweed
	presence:
	  file: ragweed.geojson
	  year_field: year
	  location_field: municipality
	  crs: EPSG:4326
	cost:
	  file: cost.asc
	  crs: EPSG:3857
	start_year: 1990
	end_year: 2020
	threshold:
	  value: 0.9
	  absolute: false
	sensitivity:
	  cost:
	    from: 0.5
	    to: 1
	    step: 0.05
	  robust:
	    from: 0
	    to: 1
	    step: 0.25
	    relative: true
	`,
}

var costFilesGuide = &command.Command{
	Usage: "cost-files",
	Short: "about cost grid files",
	Long: `
A cost grid is a raster in which each cell stores the cost of moving across
the cell. In dispersal, cost grids are read from ESRI ASCII grid files.

An ESRI ASCII grid is a text file with a header, followed by the values of the
cells, row by row, starting at the north. The header has the following
fields:

	ncols         the number of columns
	nrows         the number of rows
	xllcorner     the x coordinate of the lower left corner
	              (or xllcenter, for the center of the lower left cell)
	yllcorner     the y coordinate of the lower left corner
	              (or yllcenter, for the center of the lower left cell)
	cellsize      the size of a cell. Cells must be square.
	NODATA_value  the value of cells without data (optional)

Here is an example file:

	ncols 4
	nrows 3
	xllcorner 0
	yllcorner 0
	cellsize 1000
	NODATA_value -9999
	1 1 2 -9999
	1 2 2 3
	1 1 1 1

Cells without data, or with a negative value, are impassable. The cost of
moving between two neighboring cells is the distance between the cells (in
cell units) multiplied by the mean cost of both cells.

The coordinate reference system of the grid is not stored in the file. It
should be defined in the configuration file, or with the flag --grid-crs of
the command "dispersal thin".
	`,
}

var presenceFilesGuide = &command.Command{
	Usage: "presence-files",
	Short: "about presence files",
	Long: `
Presence files store the records in which the species was observed. A record
is defined by a location and an observation year. Records without location or
year are ignored.

Presence files can be either a GeoJSON feature collection of points, or a
tab-delimited file. A file with the extension ".tab" or ".tsv" is read as a
tab-delimited file, any other file is read as GeoJSON.

In a GeoJSON file, each feature must be a point (or a multipoint with a single
point), and the observation year and the location name are read from the
feature properties.

A tab-delimited file must contain the following fields:

	- x      the x coordinate (longitude) of the record
	- y      the y coordinate (latitude) of the record
	- year   the observation year

Other fields, such as the location name, are optional.

Here is an example file:

	x	y	year	location
	16.37	48.21	2008	Wien
	14.29	48.31	2009	Linz
	15.44	47.07	2011	Graz

The names of the year and location fields can be set in the configuration file
or with flags of the commands. The output files of dispersal use the names
"id", "year" and "location".
	`,
}

var projectsGuide = &command.Command{
	Usage: "project-files",
	Short: "about run manifest files",
	Long: `
Each dispersal run produces several files. To keep track of them, a single
manifest file (the project file) is written with the reference of all files
produced by the run. The manifest is named with the run name as prefix and
"-project.tab" as suffix, and is used by the sensitivity mode of the command
"dispersal run", as well as the commands "dispersal sensitivity" and
"dispersal prj".

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# dispersal run files
	dataset	path
	config	/data/ragweed.yaml
	paths	ragweed-paths.geojson
	points	ragweed-points.geojson
	rates	ragweed-rates.tab
	store	ragweed.sqlite

Relative paths are resolved from the directory of the project file.

The valid dataset keywords are:

	- config          the configuration file
	- cost            the cost grid
	- presence        the presence file
	- points          records in the coordinates of the cost grid
	- thinned         records after thinning
	- paths           least-cost paths
	- paths-grouped   least-cost paths with their group
	- points-grouped  records with their group
	- rates           expansion rates by group
	- distances       maximum distance by group and year
	- sensitivity     results of the sensitivity analysis
	- store           the run store, a SQLite database with all the results
	- plot            the plot of the maximum distances
	`,
}

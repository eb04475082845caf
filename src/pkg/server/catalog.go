package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type createClientRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type createSiteRequest struct {
	Client string `json:"client" validate:"required,max=120"`
	Name   string `json:"name" validate:"required,max=120,ne=all"`
}

func (s *Server) listClients(c echo.Context) error {
	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, ws.Clients())
}

func (s *Server) createClient(c echo.Context) error {
	var request createClientRequest
	if err := bindValid(c, &request); err != nil {
		return badRequest(c, err)
	}

	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	client, err := ws.AddClient(c.Request().Context(), request.Name)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// deleteClient also removes the client's sites and tasks.
func (s *Server) deleteClient(c echo.Context) error {
	err := s.store.DeleteClient(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listSites(c echo.Context) error {
	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, ws.Sites(c.QueryParam("client")))
}

func (s *Server) createSite(c echo.Context) error {
	var request createSiteRequest
	if err := bindValid(c, &request); err != nil {
		return badRequest(c, err)
	}

	ws, err := s.workspace(c)
	if err != nil {
		return storeError(c, err)
	}
	site, err := ws.AddSite(c.Request().Context(), request.Client, request.Name)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, site)
}

// deleteSite also removes the tasks of that client and site.
func (s *Server) deleteSite(c echo.Context) error {
	err := s.store.DeleteSite(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
